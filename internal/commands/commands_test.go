package commands

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/d2verb/zokuzoku/internal/config"
	"github.com/d2verb/zokuzoku/internal/hachimi"
	"github.com/d2verb/zokuzoku/internal/ipc"
	"github.com/d2verb/zokuzoku/internal/localize"
	"github.com/d2verb/zokuzoku/internal/protocol"
)

// endpointCaller sends commands through a hachimi endpoint in-process.
type endpointCaller struct {
	endpoint http.Handler
}

func (c *endpointCaller) Call(ctx context.Context, cmd protocol.Command) (protocol.Reply, error) {
	body, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}
	req := httptest.NewRequestWithContext(ctx, http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	c.endpoint.ServeHTTP(rec, req)

	resp, err := protocol.DecodeResponse(rec.Body.Bytes())
	if err != nil {
		return nil, &ipc.DecodeError{Err: err}
	}
	switch r := resp.(type) {
	case protocol.ErrorResponse:
		msg := ipc.UnknownErrorMessage
		if r.Message != nil {
			msg = *r.Message
		}
		return nil, &ipc.RemoteError{Message: msg}
	case protocol.Reply:
		return r, nil
	}
	return nil, errors.New("unexpected response")
}

type openCall struct {
	path    string
	initial []byte
}

type fakeOpener struct {
	calls []openCall
	err   error
}

func (f *fakeOpener) OpenFile(ctx context.Context, path string, initial []byte) error {
	f.calls = append(f.calls, openCall{path: path, initial: initial})
	return f.err
}

type fixture struct {
	handler *Handler
	cfg     *config.Config
	paths   *config.Paths
	stub    *hachimi.Stub
	opener  *fakeOpener
	dataDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	home := t.TempDir()
	paths := &config.Paths{
		Home:   home,
		Config: filepath.Join(home, "config.yaml"),
		Lock:   filepath.Join(home, "config.lock"),
		Cache:  filepath.Join(home, "cache"),
		Logs:   filepath.Join(home, "logs"),
	}
	dataDir := t.TempDir()
	cfg := config.DefaultConfig()
	stub := &hachimi.Stub{BlockCount: 10}
	opener := &fakeOpener{}

	h := New(cfg, paths, &endpointCaller{endpoint: hachimi.NewEndpoint(stub, nil)}, localize.NewStore(dataDir), opener, nil)
	return &fixture{handler: h, cfg: cfg, paths: paths, stub: stub, opener: opener, dataDir: dataDir}
}

func ptr[T any](v T) *T { return &v }

func TestEnable(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	err := f.handler.Enable(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	loaded, err := config.Load(f.paths.Config)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loaded.Enabled {
		t.Error("saved config should have enabled = true")
	}
}

func TestEditorsRequireTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"lyrics", func() error { return f.handler.OpenLyricsEditor(ctx, "") }},
		{"mdb", func() error { return f.handler.OpenMDBEditor(ctx, "") }},
		{"story without type", func() error { return f.handler.OpenStoryEditor(ctx, "", "1") }},
		{"story without id", func() error { return f.handler.OpenStoryEditor(ctx, "main", "") }},
		{"goto without block", func() error { return f.handler.StoryGotoBlock(ctx, nil, false) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, ErrManualActivation) {
				t.Fatalf("error = %v, want ErrManualActivation", err)
			}
			if err.Error() != "This command cannot be activated manually" {
				t.Errorf("message = %q", err.Error())
			}
		})
	}
	if len(f.opener.calls) != 0 {
		t.Errorf("editor opened %d times, want 0", len(f.opener.calls))
	}
	if len(f.stub.Commands()) != 0 {
		t.Errorf("hachimi received %v, want nothing", f.stub.Commands())
	}
}

func TestEditorPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
		want string
	}{
		{"localize dict", func() error { return f.handler.OpenLocalizeDictEditor(ctx) }, "localize_dict.json"},
		{"lyrics", func() error { return f.handler.OpenLyricsEditor(ctx, "1001") }, filepath.Join("lyrics", "1001.json")},
		{"mdb", func() error { return f.handler.OpenMDBEditor(ctx, "text_data") }, filepath.Join("mdb", "text_data.json")},
		{"story id is padded", func() error { return f.handler.OpenStoryEditor(ctx, "story", "4001") }, filepath.Join("story", "000004001.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.opener.calls = nil

			if err := tt.run(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(f.opener.calls) != 1 {
				t.Fatalf("editor opened %d times, want 1", len(f.opener.calls))
			}
			call := f.opener.calls[0]
			if want := filepath.Join(f.dataDir, tt.want); call.path != want {
				t.Errorf("path = %q, want %q", call.path, want)
			}
			if string(call.initial) != "{}\n" {
				t.Errorf("initial = %q, want empty object", call.initial)
			}
		})
	}
}

func TestEditorRejectsEscapingTargets(t *testing.T) {
	f := newFixture(t)

	if err := f.handler.OpenMDBEditor(context.Background(), "../../etc/passwd"); err == nil {
		t.Error("expected error for path outside the data directory")
	}
	if len(f.opener.calls) != 0 {
		t.Errorf("editor should not be opened, got %v", f.opener.calls)
	}
}

func TestEditorWithoutDataDir(t *testing.T) {
	f := newFixture(t)
	f.handler.store.SetDir("")

	err := f.handler.OpenLocalizeDictEditor(context.Background())

	if !errors.Is(err, localize.ErrNoDataDir) {
		t.Errorf("error = %v, want ErrNoDataDir", err)
	}
}

func TestReloadLocalizedData(t *testing.T) {
	f := newFixture(t)

	if err := f.handler.ReloadLocalizedData(context.Background()); err != nil {
		t.Fatalf("ReloadLocalizedData() error = %v", err)
	}

	cmds := f.stub.Commands()
	if len(cmds) != 1 || cmds[0] != (protocol.ReloadLocalizedData{}) {
		t.Errorf("hachimi received %v, want [ReloadLocalizedData]", cmds)
	}
}

func TestStoryGotoBlock(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		f := newFixture(t)

		err := f.handler.StoryGotoBlock(context.Background(), ptr(uint32(5)), true)

		if err != nil {
			t.Fatalf("StoryGotoBlock() error = %v", err)
		}
		want := protocol.StoryGotoBlock{BlockID: 5, Incremental: true}
		if cmds := f.stub.Commands(); len(cmds) != 1 || cmds[0] != want {
			t.Errorf("hachimi received %v, want [%v]", cmds, want)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		f := newFixture(t)

		err := f.handler.StoryGotoBlock(context.Background(), ptr(uint32(99)), false)

		if !ipc.IsRemote(err) {
			t.Fatalf("error = %v, want remote error", err)
		}
		if err.Error() != "Hachimi error: block not found" {
			t.Errorf("message = %q", err.Error())
		}
	})
}

func TestSetAndRevertLocalizedDataDir(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	newDir := t.TempDir()

	if err := f.handler.SetLocalizedDataDir(ctx, newDir); err != nil {
		t.Fatalf("SetLocalizedDataDir() error = %v", err)
	}
	if f.handler.store.Dir() != newDir {
		t.Errorf("store dir = %q, want %q", f.handler.store.Dir(), newDir)
	}
	loaded, err := config.Load(f.paths.Config)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.LocalizedDataDir != newDir {
		t.Errorf("saved localized_data_dir = %q, want %q", loaded.LocalizedDataDir, newDir)
	}

	if err := f.handler.RevertLocalizedDataDir(ctx); err != nil {
		t.Fatalf("RevertLocalizedDataDir() error = %v", err)
	}
	if f.handler.store.Dir() != "" {
		t.Errorf("store dir = %q, want empty", f.handler.store.Dir())
	}
	loaded, err = config.Load(f.paths.Config)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.LocalizedDataDir != "" {
		t.Errorf("saved localized_data_dir = %q, want empty", loaded.LocalizedDataDir)
	}
}

func TestSetLocalizedDataDirRejectsFiles(t *testing.T) {
	f := newFixture(t)
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := f.handler.SetLocalizedDataDir(context.Background(), file); err == nil {
		t.Error("expected error for a regular file")
	}
	if err := f.handler.SetLocalizedDataDir(context.Background(), filepath.Join(file, "missing")); err == nil {
		t.Error("expected error for a missing directory")
	}
	if f.cfg.LocalizedDataDir != "" {
		t.Errorf("config changed to %q", f.cfg.LocalizedDataDir)
	}
}

func TestClearCache(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(filepath.Join(f.paths.Cache, "bundles"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.paths.Cache, "bundles", "a"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := f.handler.ClearCache(context.Background()); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}

	if _, err := os.Stat(f.paths.Cache); !os.IsNotExist(err) {
		t.Errorf("cache dir still exists: %v", err)
	}
	// Clearing twice is fine
	if err := f.handler.ClearCache(context.Background()); err != nil {
		t.Errorf("second ClearCache() error = %v", err)
	}
}

func TestEditorErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.opener.err = errors.New("no editor found")

	err := f.handler.OpenLyricsEditor(context.Background(), "1001")

	if err == nil || err.Error() != "no editor found" {
		t.Errorf("error = %v, want editor error", err)
	}
}

func TestOpenStoryEditorSeedsStory(t *testing.T) {
	f := newFixture(t)

	if err := f.handler.OpenStoryEditor(context.Background(), "story", "12"); err != nil {
		t.Fatalf("OpenStoryEditor() error = %v", err)
	}

	story, err := localize.LoadJSON[localize.StoryData](f.handler.store, "story", "000000012.json")
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if story.Title != "" || story.BlockList == nil || len(story.BlockList) != 0 {
		t.Errorf("seeded story = %+v, want empty story", story)
	}
}

func TestOpenStoryEditorKeepsExistingStory(t *testing.T) {
	f := newFixture(t)
	existing := localize.StoryData{
		Title:     "Special Week",
		BlockList: []localize.StoryBlock{{Name: "Spe", Text: "Hello", NextBlock: 2}},
	}
	if err := f.handler.store.SaveJSON(existing, "story", "000000012.json"); err != nil {
		t.Fatal(err)
	}

	if err := f.handler.OpenStoryEditor(context.Background(), "story", "12"); err != nil {
		t.Fatalf("OpenStoryEditor() error = %v", err)
	}

	story, err := localize.LoadJSON[localize.StoryData](f.handler.store, "story", "000000012.json")
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if story.Title != "Special Week" || len(story.BlockList) != 1 || story.BlockList[0].Text != "Hello" {
		t.Errorf("story = %+v, want it unchanged", story)
	}
}

func TestOpenStoryEditorOpensUnparsableStory(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dataDir, "story", "000000012.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := f.handler.OpenStoryEditor(context.Background(), "story", "12"); err != nil {
		t.Fatalf("OpenStoryEditor() error = %v", err)
	}
	if len(f.opener.calls) != 1 || f.opener.calls[0].path != path {
		t.Errorf("opener calls = %v, want %s", f.opener.calls, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{broken" {
		t.Errorf("file rewritten to %q", data)
	}
}

func TestLocalizeDictStatus(t *testing.T) {
	f := newFixture(t)
	want := filepath.Join(f.dataDir, LocalizeDictFile)

	path, exists := f.handler.LocalizeDictStatus()
	if path != want || exists {
		t.Errorf("LocalizeDictStatus() = %q, %v, want %q, false", path, exists, want)
	}

	if err := os.WriteFile(want, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if path, exists = f.handler.LocalizeDictStatus(); path != want || !exists {
		t.Errorf("LocalizeDictStatus() = %q, %v, want %q, true", path, exists, want)
	}

	f.handler.store.SetDir("")
	if path, exists = f.handler.LocalizeDictStatus(); path != "" || exists {
		t.Errorf("LocalizeDictStatus() without data dir = %q, %v", path, exists)
	}
}
