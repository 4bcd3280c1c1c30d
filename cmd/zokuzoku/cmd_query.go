package main

import (
	"context"
	"fmt"

	"github.com/d2verb/zokuzoku/internal/mdb"
	"github.com/d2verb/zokuzoku/internal/pathutil"
	"github.com/d2verb/zokuzoku/internal/ui"
)

type QueryCmd struct {
	DB   string `arg:"" predictor:"file" help:"Path to master.mdb"`
	SQL  string `arg:"" help:"SQL query"`
	Meta string `help:"Path to the meta database; queries it instead of master.mdb" predictor:"file"`
}

func (c *QueryCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	dbPath, err := resolveGamePath(c.DB, s.cfg.GameDataDir)
	if err != nil {
		return err
	}
	m, err := mdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer m.Close()

	ctx := context.Background()
	var res *mdb.Result
	if c.Meta != "" {
		metaPath, err := resolveGamePath(c.Meta, s.cfg.GameDataDir)
		if err != nil {
			return err
		}
		m.SetMetaPath(metaPath)
		res, err = m.QueryMeta(ctx, c.SQL)
		if err != nil {
			return err
		}
	} else {
		res, err = m.QueryMDB(ctx, c.SQL)
		if err != nil {
			return err
		}
	}

	s.logger.Debug("query finished", "db", dbPath, "rows", len(res.Rows))
	ui.PrintTable(res.Columns, res.Rows)
	return nil
}

// resolveGamePath resolves p against the game data directory, or the
// working directory when none is configured.
func resolveGamePath(p, gameDataDir string) (string, error) {
	base := gameDataDir
	if base == "" {
		base = "."
	}
	resolved, err := pathutil.ResolvePath(p, base)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	return resolved, nil
}
