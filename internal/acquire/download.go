// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/edition-archiver/internal/httputil"
	"github.com/pdiddy/edition-archiver/internal/scrape"
)

// PDFLinkResolver finds the PDF link on an edition page. It implements
// locate.LinkResolver for the page layout.
type PDFLinkResolver struct {
	Client *httputil.Client
}

// Resolve fetches pageURL and returns the absolute URL of its PDF link.
// A missing link yields scrape.ErrPDFLinkNotFound.
func (r *PDFLinkResolver) Resolve(ctx context.Context, pageURL string) (string, error) {
	body, err := r.Client.GetBytes(ctx, pageURL, "text/html")
	if err != nil {
		return "", fmt.Errorf("fetching edition page: %w", err)
	}
	return scrape.FindPDFLink(body, pageURL)
}

// Downloader writes PDFs to disk and pauses after every request.
type Downloader struct {
	Client *httputil.Client
	Delay  time.Duration
}

// Download fetches url into destPath, replacing any existing file, and
// returns the number of bytes written. The body goes to a temporary file in
// the destination directory that is renamed into place on success. Delay is
// observed after the request whatever its outcome.
func (dl *Downloader) Download(ctx context.Context, url, destPath string) (int64, error) {
	defer httputil.Pause(ctx, dl.Delay)

	resp, err := dl.Client.Get(ctx, url, "application/pdf")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".edition-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}
