// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate maps an edition (date, version) to upstream URLs. Two
// archive layouts coexist: the legacy image archive, where the PDF path is
// built directly from the date, and the page layout, where each edition page
// must be fetched to find its PDF link.
package locate

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/edition-archiver/pkg/types"
)

// Locator builds the URLs for one archive layout.
type Locator interface {
	// Name identifies the layout in progress output.
	Name() string

	// IndexURL is the page whose carousel lists the day's editions.
	IndexURL(d types.EditionDate) string

	// PDFURL returns the absolute download URL of one edition.
	PDFURL(ctx context.Context, d types.EditionDate, v types.Version) (string, error)
}

// LinkResolver finds the PDF link on an edition page.
type LinkResolver interface {
	Resolve(ctx context.Context, pageURL string) (string, error)
}

// PageLayout is the current layout: pc/layout/YYYYMM/DD/node_VV.html, with
// the PDF link scraped from each node page.
type PageLayout struct {
	Base  string
	Links LinkResolver
}

func (l PageLayout) Name() string { return string(types.LayoutPage) }

func (l PageLayout) IndexURL(d types.EditionDate) string {
	return l.PageURL(d, 1)
}

// PageURL returns the node page for version v.
func (l PageLayout) PageURL(d types.EditionDate, v types.Version) string {
	return fmt.Sprintf("%spc/layout/%s/%s/node_%s.html", l.Base, d.YearMonth(), d.DayOfMonth(), v)
}

func (l PageLayout) PDFURL(ctx context.Context, d types.EditionDate, v types.Version) (string, error) {
	if l.Links == nil {
		return "", fmt.Errorf("page layout has no link resolver")
	}
	return l.Links.Resolve(ctx, l.PageURL(d, v))
}

// ImageArchive is the legacy layout. PDFs live at a path derived from the
// date and version, so no edition page is fetched.
type ImageArchive struct {
	Base string
}

func (l ImageArchive) Name() string { return string(types.LayoutImages) }

func (l ImageArchive) IndexURL(d types.EditionDate) string {
	return fmt.Sprintf("%shtml/%s/%s/nbs.D110000renmrb_01.htm", l.Base, d.YearDashMonth(), d.DayOfMonth())
}

func (l ImageArchive) PDFURL(_ context.Context, d types.EditionDate, v types.Version) (string, error) {
	return fmt.Sprintf("%simages/%s/%s/%s/rmrb%s%s.pdf",
		l.Base, d.YearDashMonth(), d.DayOfMonth(), v, d, v), nil
}

// Selector picks the locator for a date according to the configured layout.
type Selector struct {
	layout  types.Layout
	cutover types.EditionDate
	page    Locator
	images  Locator
}

// NewSelector builds both locators over cfg.BaseURL. links serves the page
// layout.
func NewSelector(cfg types.ArchiveConfig, links LinkResolver) (*Selector, error) {
	base, err := normalizeBase(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	switch cfg.Layout {
	case types.LayoutAuto, types.LayoutPage, types.LayoutImages:
	default:
		return nil, fmt.Errorf("unknown layout %q", cfg.Layout)
	}
	return &Selector{
		layout:  cfg.Layout,
		cutover: cfg.Cutover,
		page:    PageLayout{Base: base, Links: links},
		images:  ImageArchive{Base: base},
	}, nil
}

// For returns the locator serving d. In auto mode dates before the cutover
// use the image archive.
func (s *Selector) For(d types.EditionDate) Locator {
	switch s.layout {
	case types.LayoutImages:
		return s.images
	case types.LayoutPage:
		return s.page
	}
	if d.Before(s.cutover) {
		return s.images
	}
	return s.page
}

func normalizeBase(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q", raw)
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw, nil
}
