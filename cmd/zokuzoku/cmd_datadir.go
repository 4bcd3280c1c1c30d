package main

import (
	"context"
	"fmt"

	"github.com/d2verb/zokuzoku/internal/ui"
)

type DataDirCmd struct {
	Set    DataDirSetCmd    `cmd:"" help:"Set the localized data directory"`
	Revert DataDirRevertCmd `cmd:"" help:"Clear the localized data directory override"`
}

type DataDirSetCmd struct {
	Dir string `arg:"" predictor:"dir" help:"Directory containing localized data"`
}

func (c *DataDirSetCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.handler.SetLocalizedDataDir(context.Background(), c.Dir); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Localized data directory set to %s", ui.FormatPath(s.cfg.LocalizedDataDir)))
	return nil
}

type DataDirRevertCmd struct{}

func (c *DataDirRevertCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.handler.RevertLocalizedDataDir(context.Background()); err != nil {
		return err
	}
	ui.PrintSuccess("Localized data directory reverted")
	return nil
}

type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Remove cached files"`
}

type CacheClearCmd struct{}

func (c *CacheClearCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.handler.ClearCache(context.Background()); err != nil {
		return err
	}
	ui.PrintSuccess("Cache cleared")
	return nil
}
