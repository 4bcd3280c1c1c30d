package main

import "context"

type EditCmd struct {
	Dict   EditDictCmd   `cmd:"" help:"Edit the localize dictionary"`
	Lyrics EditLyricsCmd `cmd:"" help:"Edit the lyrics of a song"`
	MDB    EditMDBCmd    `cmd:"" name:"mdb" help:"Edit a master database table"`
	Story  EditStoryCmd  `cmd:"" help:"Edit a story"`
}

type EditDictCmd struct{}

func (c *EditDictCmd) Run(g *Globals) error {
	return runEdit(g, func(ctx context.Context, s *session) error {
		return s.handler.OpenLocalizeDictEditor(ctx)
	})
}

type EditLyricsCmd struct {
	Song string `arg:"" optional:"" help:"Song index"`
}

func (c *EditLyricsCmd) Run(g *Globals) error {
	return runEdit(g, func(ctx context.Context, s *session) error {
		return s.handler.OpenLyricsEditor(ctx, c.Song)
	})
}

type EditMDBCmd struct {
	Table string `arg:"" optional:"" help:"Table name"`
}

func (c *EditMDBCmd) Run(g *Globals) error {
	return runEdit(g, func(ctx context.Context, s *session) error {
		return s.handler.OpenMDBEditor(ctx, c.Table)
	})
}

type EditStoryCmd struct {
	Type string `arg:"" optional:"" predictor:"story-type" help:"Story type (e.g. story, home, race)"`
	ID   string `arg:"" optional:"" help:"Story id; zero-padded to 9 digits"`
}

func (c *EditStoryCmd) Run(g *Globals) error {
	return runEdit(g, func(ctx context.Context, s *session) error {
		return s.handler.OpenStoryEditor(ctx, c.Type, c.ID)
	})
}

func runEdit(g *Globals, open func(context.Context, *session) error) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := open(context.Background(), s); err != nil {
		return mapCommandError(err, s.client.URL())
	}
	return nil
}
