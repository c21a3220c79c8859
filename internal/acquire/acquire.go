// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads dated newspaper editions into the archive
// directory. A Driver walks a date range one day at a time: it counts the
// day's editions from the index page, locates each edition's PDF and
// downloads it as {YYYYMMDD}{VV}.pdf.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/edition-archiver/internal/httputil"
	"github.com/pdiddy/edition-archiver/internal/locate"
	"github.com/pdiddy/edition-archiver/internal/scrape"
	"github.com/pdiddy/edition-archiver/pkg/types"
)

// ErrRangeHalted is returned when a date's edition count cannot be resolved.
// Dates after the failing one are not processed.
var ErrRangeHalted = errors.New("range halted")

// errNoEditions is the halt cause for an index that lists zero editions.
var errNoEditions = errors.New("no editions listed")

// VersionCounter resolves how many editions a date has.
type VersionCounter interface {
	VersionCount(ctx context.Context, d types.EditionDate) (int, error)
}

// FileDownloader stores one URL at a local path.
type FileDownloader interface {
	Download(ctx context.Context, url, destPath string) (int64, error)
}

// Recorder receives every version attempt. The history ledger implements it.
type Recorder interface {
	Record(ctx context.Context, a types.Attempt) error
}

// RangeResult holds the outcome of a range run.
type RangeResult struct {
	Dates      int
	Downloaded int
	Failed     int
	Files      []string

	// HaltedAt is the date whose edition count could not be resolved, or
	// the zero date when the range completed.
	HaltedAt types.EditionDate
}

// Halted reports whether the run stopped at an unresolved date.
func (r RangeResult) Halted() bool {
	return !r.HaltedAt.IsZero()
}

// HasFailures reports whether any version failed or the range halted.
func (r RangeResult) HasFailures() bool {
	return r.Failed > 0 || r.Halted()
}

func (r *RangeResult) add(o RangeResult) {
	r.Dates += o.Dates
	r.Downloaded += o.Downloaded
	r.Failed += o.Failed
	r.Files = append(r.Files, o.Files...)
}

// Driver orchestrates index resolution, PDF location and download.
type Driver struct {
	Config     types.ArchiveConfig
	Index      VersionCounter
	Locators   LocatorSource
	Downloader FileDownloader

	// History is optional.
	History Recorder

	// Out receives per-edition progress lines.
	Out io.Writer

	// Now defaults to time.Now.
	Now func() time.Time

	// pause defaults to httputil.Pause; tests replace it.
	pause func(context.Context, time.Duration) error
}

// NewDriver wires the HTTP-backed resolvers and downloader for cfg.
// manual and history may be nil.
func NewDriver(cfg types.ArchiveConfig, manual ManualCount, history Recorder, w io.Writer) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := httputil.NewClient(cfg.HTTPConfig)
	selector, err := locate.NewSelector(cfg, &PDFLinkResolver{Client: client})
	if err != nil {
		return nil, err
	}
	return &Driver{
		Config:     cfg,
		Index:      &IndexResolver{Client: client, Locators: selector, Manual: manual},
		Locators:   selector,
		Downloader: &Downloader{Client: client, Delay: cfg.DownloadDelay},
		History:    history,
		Out:        w,
	}, nil
}

// DownloadRange downloads every edition from begin to end inclusive. If a
// date's edition count cannot be resolved, or is zero, the run stops there
// and the returned error wraps ErrRangeHalted. Failures of single editions
// are counted and reported but do not stop the run.
func (d *Driver) DownloadRange(ctx context.Context, begin, end types.EditionDate) (RangeResult, error) {
	var result RangeResult
	if err := d.ensureDir(); err != nil {
		return result, err
	}
	fmt.Fprintf(d.out(), "range: %s to %s\n", begin, end)

	for date := range types.Days(begin, end) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		fmt.Fprintf(d.out(), "date: %s (%s)\n", date, d.Config.WeekdayLabel(date))

		count, err := d.Index.VersionCount(ctx, date)
		if err == nil && count == 0 {
			err = errNoEditions
		}
		if err != nil {
			fmt.Fprintf(d.out(), "halted:  %s (%v)\n", date, err)
			result.HaltedAt = date
			d.summary(result)
			return result, fmt.Errorf("%w at %s: %w", ErrRangeHalted, date, err)
		}
		fmt.Fprintf(d.out(), "  editions: %d\n", count)

		for v := types.Version(1); int(v) <= count; v++ {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			d.downloadVersion(ctx, date, v, &result)
		}
		result.Dates++

		if err := d.sleep(ctx, d.Config.DateDelay); err != nil {
			return result, err
		}
	}

	d.summary(result)
	return result, nil
}

// DownloadToday downloads the editions for the current date.
func (d *Driver) DownloadToday(ctx context.Context) (RangeResult, error) {
	today := types.Today(d.now())
	return d.DownloadRange(ctx, today, today)
}

// DownloadEdition downloads one known edition without resolving the day's
// edition count.
func (d *Driver) DownloadEdition(ctx context.Context, date types.EditionDate, v types.Version) error {
	if err := d.ensureDir(); err != nil {
		return err
	}
	var result RangeResult
	if a := d.downloadVersion(ctx, date, v, &result); a.Status != types.AttemptDownloaded {
		return fmt.Errorf("edition %s: %s", a.Key(), a.Error)
	}
	return nil
}

// Backfill runs each date as its own one-day range. A halted date does not
// stop the dates after it. It returns the combined result and the dates that
// halted.
func (d *Driver) Backfill(ctx context.Context, dates []types.EditionDate) (RangeResult, []types.EditionDate, error) {
	var total RangeResult
	var halted []types.EditionDate
	for _, date := range dates {
		r, err := d.DownloadRange(ctx, date, date)
		total.add(r)
		switch {
		case errors.Is(err, ErrRangeHalted):
			halted = append(halted, date)
		case err != nil:
			return total, halted, err
		}
	}
	return total, halted, nil
}

// downloadVersion locates and downloads one edition, updating result and
// recording the attempt.
func (d *Driver) downloadVersion(ctx context.Context, date types.EditionDate, v types.Version, result *RangeResult) types.Attempt {
	loc := d.Locators.For(date)
	a := types.Attempt{
		Date:    date,
		Version: v,
		Path:    filepath.Join(d.Config.Dir, types.FileName(date, v)),
	}
	fmt.Fprintf(d.out(), "  downloading: %s (%s)\n", a.Key(), loc.Name())

	pdfURL, err := loc.PDFURL(ctx, date, v)
	if err != nil {
		a.Status = types.AttemptNoLink
		if !errors.Is(err, scrape.ErrPDFLinkNotFound) {
			a.Status = types.AttemptFailed
		}
		a.Error = err.Error()
		result.Failed++
		fmt.Fprintf(d.out(), "  failed:  %s (%v)\n", a.Key(), err)
		d.record(ctx, a)
		d.sleep(ctx, d.Config.DownloadDelay)
		return a
	}
	a.URL = pdfURL

	n, err := d.Downloader.Download(ctx, pdfURL, a.Path)
	if err != nil {
		a.Status = types.AttemptFailed
		a.Error = err.Error()
		result.Failed++
		fmt.Fprintf(d.out(), "  failed:  %s (%v)\n", a.Key(), err)
		d.record(ctx, a)
		return a
	}

	a.Status = types.AttemptDownloaded
	a.Bytes = n
	result.Downloaded++
	result.Files = append(result.Files, a.Path)
	fmt.Fprintf(d.out(), "  saved:   %s (%d bytes)\n", a.Path, n)
	d.record(ctx, a)
	return a
}

func (d *Driver) record(ctx context.Context, a types.Attempt) {
	if d.History == nil {
		return
	}
	a.At = d.now().UTC()
	if err := d.History.Record(ctx, a); err != nil {
		fmt.Fprintf(d.out(), "  warning: history record failed: %v\n", err)
	}
}

func (d *Driver) summary(r RangeResult) {
	fmt.Fprintf(d.out(), "\nRange summary: %d date(s), %d downloaded, %d failed\n",
		r.Dates, r.Downloaded, r.Failed)
}

func (d *Driver) ensureDir() error {
	if err := os.MkdirAll(d.Config.Dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", d.Config.Dir, err)
	}
	return nil
}

func (d *Driver) sleep(ctx context.Context, dur time.Duration) error {
	if d.pause != nil {
		return d.pause(ctx, dur)
	}
	return httputil.Pause(ctx, dur)
}

func (d *Driver) out() io.Writer {
	if d.Out == nil {
		return io.Discard
	}
	return d.Out
}

func (d *Driver) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}
