package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/d2verb/zokuzoku/internal/commands"
	"github.com/d2verb/zokuzoku/internal/config"
	"github.com/d2verb/zokuzoku/internal/editor"
	"github.com/d2verb/zokuzoku/internal/ipc"
	"github.com/d2verb/zokuzoku/internal/localize"
	"github.com/d2verb/zokuzoku/internal/logging"
	"github.com/d2verb/zokuzoku/internal/protocol"
	"github.com/d2verb/zokuzoku/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

func getPaths() (*config.Paths, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("get paths: %w", err)
	}
	return paths, nil
}

// session holds what a command needs: paths, config, logger and Hachimi client.
type session struct {
	paths   *config.Paths
	cfg     *config.Config
	logger  *slog.Logger
	client  *ipc.Client
	handler *commands.Handler
	logFile io.Closer
}

func openSession(g *Globals) (*session, error) {
	paths, err := getPaths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}
	return newSession(g, paths)
}

func newSession(g *Globals, paths *config.Paths) (*session, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if g != nil && g.Host != "" {
		cfg.HachimiIPCAddress = g.Host
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if g != nil && g.Debug {
		level = slog.LevelDebug
	}
	logger, logFile := logging.OpenFile(paths.MainLog, level)

	client := ipc.New(cfg.HachimiIPCAddress, ipc.WithLogger(logger))
	store := localize.NewStore(cfg.LocalizedDataDir)
	handler := commands.New(cfg, paths, progressCaller{client: client}, store, lazyEditor{}, logger)

	return &session{
		paths:   paths,
		cfg:     cfg,
		logger:  logger,
		client:  client,
		handler: handler,
		logFile: logFile,
	}, nil
}

func (s *session) Close() {
	_ = s.logFile.Close()
}

// progressCaller reports Hachimi calls on interactive terminals.
type progressCaller struct {
	client *ipc.Client
}

func (p progressCaller) Call(ctx context.Context, cmd protocol.Command) (protocol.Reply, error) {
	if !isTerminal(os.Stdout) {
		return p.client.Call(ctx, cmd)
	}
	return p.client.CallWithProgress(ctx, cmd, func(cmd protocol.Command, phase ipc.Phase, err error) {
		if phase == ipc.PhaseSending {
			fmt.Fprintln(ui.Output, ui.Dim(fmt.Sprintf("Sending %s to %s...", cmd.Type(), p.client.URL())))
		}
	})
}

// lazyEditor looks up the editor only when a file is opened, so commands
// that never edit work without one configured.
type lazyEditor struct{}

func (lazyEditor) OpenFile(ctx context.Context, path string, initial []byte) error {
	l, err := editor.NewLauncher()
	if err != nil {
		return err
	}
	return l.OpenFile(ctx, path, initial)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newProgressBar returns a byte progress bar on stderr, or nil when stderr
// is not a terminal. total may be -1 when the size is unknown.
func newProgressBar(total int64, description string) *progressbar.ProgressBar {
	if !isTerminal(os.Stderr) {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
