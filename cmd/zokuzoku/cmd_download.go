package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/d2verb/zokuzoku/internal/download"
	"github.com/d2verb/zokuzoku/internal/pathutil"
	"github.com/d2verb/zokuzoku/internal/ui"
	"github.com/schollz/progressbar/v3"
)

type FetchCmd struct {
	URL   string `arg:"" help:"URL to download"`
	Dest  string `arg:"" optional:"" predictor:"file" help:"Destination file (default: the cache directory)"`
	Print bool   `short:"p" help:"Print the body instead of saving it"`
}

func (c *FetchCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	if c.Print {
		return c.printBody(context.Background(), download.New(s.logger))
	}

	dest, err := c.destination(s.paths.Cache)
	if err != nil {
		return err
	}
	name := filepath.Base(dest)

	d := download.New(s.logger)
	var bar *progressbar.ProgressBar
	d.SetProgressFunc(func(downloaded, total int64) {
		if bar == nil {
			bar = newProgressBar(total, name)
			if bar == nil {
				return
			}
		}
		_ = bar.Set64(downloaded)
	})

	ui.PrintInfo(fmt.Sprintf("Downloading %s...", name))
	size, err := d.ToFile(context.Background(), c.URL, name, dest)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		ui.PrintError(err.Error())
		return errDownloadFailed()
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %s to %s", ui.FormatBytes(size), ui.FormatPath(dest)))
	return nil
}

func (c *FetchCmd) printBody(ctx context.Context, d *download.Downloader) error {
	body, err := d.String(ctx, c.URL)
	if err != nil {
		ui.PrintError(err.Error())
		return errDownloadFailed()
	}
	fmt.Fprint(ui.Output, body)
	return nil
}

// destination resolves Dest, defaulting to the URL's file name in cacheDir.
func (c *FetchCmd) destination(cacheDir string) (string, error) {
	if c.Dest != "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return pathutil.ResolvePath(c.Dest, cwd)
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return "", fmt.Errorf("cannot derive a file name from %s; pass a destination", c.URL)
	}
	return filepath.Join(cacheDir, base), nil
}
