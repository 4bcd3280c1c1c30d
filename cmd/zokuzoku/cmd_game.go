package main

import (
	"os"

	"github.com/d2verb/zokuzoku/internal/game"
	"github.com/d2verb/zokuzoku/internal/ui"
)

type GameCmd struct {
	Paths GamePathsCmd `cmd:"" help:"List game install and data directories"`
}

type GamePathsCmd struct{}

func (c *GamePathsCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	var installs []ui.PathStatus
	for _, p := range game.InstallPaths() {
		installs = append(installs, ui.PathStatus{Path: p, Exists: true})
	}
	ui.PrintPathList("Game installs:", installs)

	var data []ui.PathStatus
	if s.cfg.GameDataDir != "" {
		data = append(data, pathStatus(s.cfg.GameDataDir))
	}
	if dir, err := game.DefaultDataDir(); err == nil && dir != s.cfg.GameDataDir {
		data = append(data, pathStatus(dir))
	}
	ui.PrintPathList("Game data:", data)
	return nil
}

func pathStatus(path string) ui.PathStatus {
	_, err := os.Stat(path)
	return ui.PathStatus{Path: path, Exists: err == nil}
}

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" help:"Show the effective configuration"`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	dict, dictExists := s.handler.LocalizeDictStatus()
	ui.PrintConfig(ui.ConfigDetails{
		Enabled:            s.cfg.Enabled,
		ConfigPath:         s.paths.Config,
		HachimiURL:         s.client.URL(),
		GameDataDir:        s.cfg.GameDataDir,
		LocalizedDataDir:   s.cfg.LocalizedDataDir,
		LocalizeDict:       dict,
		LocalizeDictExists: dictExists,
		LogLevel:           s.cfg.LogLevel,
		LogPath:            s.paths.MainLog,
	})
	return nil
}
