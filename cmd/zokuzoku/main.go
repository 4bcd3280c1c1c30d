package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"
)

var (
	version = "dev"
	commit  = "none"
)

// Globals are flags shared by every command.
type Globals struct {
	Host  string `help:"Hachimi IPC host (overrides hachimi_ipc_address)" placeholder:"HOST"`
	Debug bool   `help:"Log at debug level"`
}

type CLI struct {
	Globals

	Enable  EnableCmd  `cmd:"" help:"Enable ZokuZoku"`
	Reload  ReloadCmd  `cmd:"" help:"Ask Hachimi to reload localized data"`
	Goto    GotoCmd    `cmd:"" help:"Jump to a story block in the running game"`
	Edit    EditCmd    `cmd:"" help:"Edit localized data"`
	DataDir DataDirCmd `cmd:"" name:"data-dir" help:"Manage the localized data directory"`
	Cache   CacheCmd   `cmd:"" help:"Manage the cache"`
	Fetch   FetchCmd   `cmd:"" name:"download" help:"Download a file"`
	Query   QueryCmd   `cmd:"" help:"Query the game databases"`
	Game    GameCmd    `cmd:"" help:"Inspect the game installation"`
	Config  ConfigCmd  `cmd:"" help:"Show configuration"`
	Stub    StubCmd    `cmd:"" name:"hachimi-stub" hidden:"" help:"Serve a stand-in Hachimi IPC endpoint"`

	Completion kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
	Version    VersionCmd                   `cmd:"" help:"Show version"`
}

func main() {
	cli := CLI{}
	parser := kong.Must(&cli,
		kong.Name("zokuzoku"),
		kong.Description("Translation tooling for Hachimi"),
		kong.UsageOnError(),
		kong.Vars{"stub_addr": defaultStubAddr},
	)

	kongplete.Complete(parser,
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
		kongplete.WithPredictor("dir", complete.PredictDirs("*")),
		kongplete.WithPredictor("story-type", newStoryTypePredictor()),
	)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(&cli.Globals); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}
