// Package download fetches game bundles and other remote files.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Timeout bounds a whole download.
const Timeout = 5 * time.Minute

// ProgressFunc is called with the bytes written so far and the expected total.
// total is -1 when the server did not announce a length.
type ProgressFunc func(downloaded, total int64)

// Downloader handles HTTP downloads.
type Downloader struct {
	client     *http.Client
	logger     *slog.Logger
	onProgress ProgressFunc
}

// New creates a downloader.
func New(logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Downloader{
		client: &http.Client{Timeout: Timeout},
		logger: logger,
	}
}

// SetProgressFunc sets the callback for download progress.
func (d *Downloader) SetProgressFunc(fn ProgressFunc) {
	d.onProgress = fn
}

// ToFile downloads url into dest and returns the number of bytes written.
// The file is written to a temporary name first; a failed download leaves
// dest untouched.
func (d *Downloader) ToFile(ctx context.Context, url, displayName, dest string) (int64, error) {
	d.logger.Info("downloading", "name", displayName, "url", url)

	resp, err := d.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	out, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	tmpPath := out.Name()

	pw := &progressWriter{w: out, total: resp.ContentLength, onProgress: d.onProgress}
	written, err := io.Copy(pw, resp.Body)
	if err != nil {
		out.Close()
		os.Remove(tmpPath) // Clean up partial download
		return 0, fmt.Errorf("write %s: %w", displayName, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename file: %w", err)
	}

	d.logger.Info("finished downloading", "name", displayName, "bytes", written)
	return written, nil
}

// String downloads url and returns the body as text.
func (d *Downloader) String(ctx context.Context, url string) (string, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}
	return resp, nil
}

type progressWriter struct {
	w          io.Writer
	written    int64
	total      int64
	onProgress ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	if pw.onProgress != nil {
		pw.onProgress(pw.written, pw.total)
	}
	return n, err
}
