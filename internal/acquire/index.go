// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/edition-archiver/internal/httputil"
	"github.com/pdiddy/edition-archiver/internal/locate"
	"github.com/pdiddy/edition-archiver/internal/scrape"
	"github.com/pdiddy/edition-archiver/pkg/types"
)

// ErrNoManualCount is returned when the index carousel is missing and no
// manual count callback is configured.
var ErrNoManualCount = errors.New("edition count needs manual input")

// ManualCount supplies the number of editions for a date when the index page
// markup is not recognized. The CLI prompts the operator; tests pass a stub.
type ManualCount func(ctx context.Context, d types.EditionDate, indexURL string) (int, error)

// LocatorSource returns the locator serving a date. *locate.Selector
// implements it.
type LocatorSource interface {
	For(d types.EditionDate) locate.Locator
}

// IndexResolver counts a day's editions from its index page.
type IndexResolver struct {
	Client   *httputil.Client
	Locators LocatorSource
	Manual   ManualCount
}

// VersionCount fetches the index page for d and counts its edition links.
// Any fetch failure is returned as an error, which halts a range. When the
// carousel is missing the count comes from Manual.
func (r *IndexResolver) VersionCount(ctx context.Context, d types.EditionDate) (int, error) {
	indexURL := r.Locators.For(d).IndexURL(d)

	body, err := r.Client.GetBytes(ctx, indexURL, "text/html")
	if err != nil {
		return 0, fmt.Errorf("fetching index %s: %w", indexURL, err)
	}

	n, err := scrape.CountVersions(body)
	switch {
	case errors.Is(err, scrape.ErrLayoutChanged):
		return r.manualCount(ctx, d, indexURL)
	case err != nil:
		return 0, fmt.Errorf("index %s: %w", indexURL, err)
	}
	return n, nil
}

func (r *IndexResolver) manualCount(ctx context.Context, d types.EditionDate, indexURL string) (int, error) {
	if r.Manual == nil {
		return 0, fmt.Errorf("index %s: %w: %w", indexURL, scrape.ErrLayoutChanged, ErrNoManualCount)
	}
	n, err := r.Manual(ctx, d, indexURL)
	if err != nil {
		return 0, fmt.Errorf("manual edition count for %s: %w", d, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("manual edition count for %s is negative: %d", d, n)
	}
	return n, nil
}
