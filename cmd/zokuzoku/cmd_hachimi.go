package main

import (
	"context"
	"fmt"

	"github.com/d2verb/zokuzoku/internal/ui"
)

type EnableCmd struct{}

func (c *EnableCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.handler.Enable(context.Background()); err != nil {
		return err
	}
	ui.PrintSuccess("ZokuZoku enabled")
	return nil
}

type ReloadCmd struct{}

func (c *ReloadCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.handler.ReloadLocalizedData(context.Background()); err != nil {
		return mapCommandError(err, s.client.URL())
	}
	ui.PrintSuccess("Localized data reloaded")
	return nil
}

type GotoCmd struct {
	Block       *uint32 `arg:"" optional:"" help:"Story block id"`
	Incremental bool    `short:"i" help:"Advance from the current block instead of restarting the story"`
}

func (c *GotoCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.handler.StoryGotoBlock(context.Background(), c.Block, c.Incremental); err != nil {
		return mapCommandError(err, s.client.URL())
	}
	ui.PrintSuccess(fmt.Sprintf("Jumped to block %d", *c.Block))
	return nil
}
