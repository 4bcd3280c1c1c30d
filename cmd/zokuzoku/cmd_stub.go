package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/d2verb/zokuzoku/internal/hachimi"
	"github.com/d2verb/zokuzoku/internal/ipc"
	"github.com/d2verb/zokuzoku/internal/logging"
	"github.com/d2verb/zokuzoku/internal/ui"
)

type StubCmd struct {
	Listen string `help:"Address to listen on" default:"${stub_addr}"`
	Blocks uint32 `help:"Number of blocks in the pretend story; 0 accepts any block"`
}

func (c *StubCmd) Run(g *Globals) error {
	level := slog.LevelInfo
	if g != nil && g.Debug {
		level = slog.LevelDebug
	}
	logger := logging.NewLogger(os.Stderr, level)

	srv := hachimi.NewServer(c.Listen, &hachimi.Stub{BlockCount: c.Blocks}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	ui.PrintInfo(fmt.Sprintf("Hachimi stub listening on %s (Ctrl+C to stop)", ui.FormatPath(srv.Addr())))

	<-ctx.Done()
	return srv.Stop()
}

// defaultStubAddr is the address the real Hachimi listens on.
var defaultStubAddr = net.JoinHostPort(ipc.DefaultHost, strconv.Itoa(ipc.Port))
