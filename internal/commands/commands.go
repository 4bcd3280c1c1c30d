// Package commands implements the user-facing ZokuZoku commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/d2verb/zokuzoku/internal/config"
	"github.com/d2verb/zokuzoku/internal/game"
	"github.com/d2verb/zokuzoku/internal/localize"
	"github.com/d2verb/zokuzoku/internal/pathutil"
	"github.com/d2verb/zokuzoku/internal/protocol"
)

// ErrManualActivation is returned when a command that needs a target is run without one.
var ErrManualActivation = errors.New("This command cannot be activated manually")

// LocalizeDictFile is the localize dictionary inside the localized data directory.
const LocalizeDictFile = "localize_dict.json"

var emptyObject = []byte("{}\n")

// Caller sends commands to Hachimi.
type Caller interface {
	Call(ctx context.Context, cmd protocol.Command) (protocol.Reply, error)
}

// Opener opens a file for editing, creating it with initial content if absent.
type Opener interface {
	OpenFile(ctx context.Context, path string, initial []byte) error
}

// Handler runs commands against the user's configuration, the localized
// data directory and Hachimi.
type Handler struct {
	cfg    *config.Config
	paths  *config.Paths
	ipc    Caller
	store  *localize.Store
	editor Opener
	logger *slog.Logger
}

// New creates a command handler.
func New(cfg *config.Config, paths *config.Paths, ipc Caller, store *localize.Store, editor Opener, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		cfg:    cfg,
		paths:  paths,
		ipc:    ipc,
		store:  store,
		editor: editor,
		logger: logger,
	}
}

// Enable turns ZokuZoku on and saves the config.
func (h *Handler) Enable(ctx context.Context) error {
	if err := h.updateConfig(func(c *config.Config) { c.Enabled = true }); err != nil {
		return err
	}
	h.logger.Info("zokuzoku enabled")
	return nil
}

// OpenLocalizeDictEditor opens the localize dictionary.
func (h *Handler) OpenLocalizeDictEditor(ctx context.Context) error {
	h.logger.Info("opening localize dict editor")
	return h.open(ctx, LocalizeDictFile)
}

// OpenLyricsEditor opens the lyrics file of a song.
func (h *Handler) OpenLyricsEditor(ctx context.Context, songIndex string) error {
	if songIndex == "" {
		return ErrManualActivation
	}
	h.logger.Info("opening lyrics editor", "song", songIndex)
	return h.open(ctx, "lyrics", songIndex+".json")
}

// OpenMDBEditor opens the localized data of a master database table.
func (h *Handler) OpenMDBEditor(ctx context.Context, table string) error {
	if table == "" {
		return ErrManualActivation
	}
	h.logger.Info("opening mdb editor", "table", table)
	return h.open(ctx, "mdb", table+".json")
}

// OpenStoryEditor opens a story file. storyID is zero-padded to the game's id width.
func (h *Handler) OpenStoryEditor(ctx context.Context, storyType, storyID string) error {
	if storyType == "" || storyID == "" {
		return ErrManualActivation
	}
	id := game.NormalizeStoryID(storyID)
	h.logger.Info("opening story editor", "type", storyType, "id", id)
	if err := h.prepareStory(storyType, id+".json"); err != nil {
		return err
	}
	return h.open(ctx, storyType, id+".json")
}

// prepareStory seeds a missing story file with an empty story. An existing
// file is left as is; one that does not parse is still opened so it can be fixed.
func (h *Handler) prepareStory(segments ...string) error {
	if !h.store.Exists(segments...) {
		return h.store.SaveJSON(localize.StoryData{BlockList: []localize.StoryBlock{}}, segments...)
	}
	story, err := localize.LoadJSON[localize.StoryData](h.store, segments...)
	if err != nil {
		h.logger.Warn("story file does not parse", "error", err)
		return nil
	}
	h.logger.Debug("story loaded", "title", story.Title, "blocks", len(story.BlockList))
	return nil
}

// LocalizeDictStatus returns the localize dictionary path and whether it
// exists. The path is empty when no localized data directory is set.
func (h *Handler) LocalizeDictStatus() (string, bool) {
	path, err := h.store.Path(LocalizeDictFile)
	if err != nil {
		return "", false
	}
	return path, h.store.Exists(LocalizeDictFile)
}

func (h *Handler) open(ctx context.Context, segments ...string) error {
	path, err := h.store.Path(segments...)
	if err != nil {
		return err
	}
	return h.editor.OpenFile(ctx, path, emptyObject)
}

// ReloadLocalizedData asks Hachimi to reload localized data from disk.
func (h *Handler) ReloadLocalizedData(ctx context.Context) error {
	h.logger.Info("reloading localized data")
	_, err := h.ipc.Call(ctx, protocol.ReloadLocalizedData{})
	return err
}

// StoryGotoBlock asks Hachimi to jump to a story block.
// A nil blockID means no block was given.
func (h *Handler) StoryGotoBlock(ctx context.Context, blockID *uint32, incremental bool) error {
	if blockID == nil {
		return ErrManualActivation
	}
	h.logger.Info("story goto block", "block_id", *blockID, "incremental", incremental)
	_, err := h.ipc.Call(ctx, protocol.StoryGotoBlock{BlockID: *blockID, Incremental: incremental})
	return err
}

// SetLocalizedDataDir sets and persists the localized data directory.
// Relative paths are resolved against the current directory.
func (h *Handler) SetLocalizedDataDir(ctx context.Context, dir string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	resolved, err := pathutil.ResolvePath(dir, cwd)
	if err != nil {
		return err
	}
	resolved = filepath.Clean(resolved)

	info, err := os.Stat(resolved)
	if err != nil {
		return fmt.Errorf("localized data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("localized data directory %s is not a directory", resolved)
	}

	if err := h.updateConfig(func(c *config.Config) { c.LocalizedDataDir = resolved }); err != nil {
		return err
	}
	h.store.SetDir(resolved)
	h.logger.Info("localized data directory set", "dir", resolved)
	return nil
}

// RevertLocalizedDataDir clears the localized data directory override.
func (h *Handler) RevertLocalizedDataDir(ctx context.Context) error {
	if err := h.updateConfig(func(c *config.Config) { c.LocalizedDataDir = "" }); err != nil {
		return err
	}
	h.store.SetDir("")
	h.logger.Info("localized data directory reverted")
	return nil
}

// ClearCache removes the cache directory.
func (h *Handler) ClearCache(ctx context.Context) error {
	if err := os.RemoveAll(h.paths.Cache); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	h.logger.Info("cache cleared", "dir", h.paths.Cache)
	return nil
}

// updateConfig changes the saved config file and then the effective config.
// Overrides in the effective config are never written.
func (h *Handler) updateConfig(fn func(*config.Config)) error {
	if err := config.Update(h.paths.Config, h.paths.Lock, fn); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fn(h.cfg)
	return nil
}
