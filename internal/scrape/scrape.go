// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape extracts edition data from archive HTML pages: the number
// of editions in a day's index carousel and the PDF link on an edition page.
package scrape

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// PDFLinkLabel is the visible text of the download link on an edition page.
const PDFLinkLabel = "PDF下载"

var (
	// ErrLayoutChanged means the index carousel is missing entirely. The
	// page layout changed or no content exists for the date.
	ErrLayoutChanged = errors.New("edition carousel not found")

	// ErrNoCarousel means the carousel box exists but holds no slide
	// container.
	ErrNoCarousel = errors.New("carousel container not found")

	// ErrPDFLinkNotFound means no anchor carries the PDF label.
	ErrPDFLinkNotFound = errors.New("PDF link not found")
)

// Selectors for the index carousel: box > container > slide > a.
const (
	carouselBoxSelector       = "div.swiper-box"
	carouselContainerSelector = "div.swiper-container"
	carouselSlideSelector     = "div.swiper-slide"
)

// Encoding is a candidate character encoding for a page body.
type Encoding struct {
	Name string
	Enc  encoding.Encoding
}

// fallbackCharset is tried last for bodies that are not valid UTF-8. Legacy
// archive pages are GB2312/GBK, both subsets of GB18030.
const fallbackCharset = "gb18030"

// DetectEncodings returns the encodings worth trying for body, most likely
// first. Only the bytes are consulted: a BOM is decisive, valid UTF-8 is
// UTF-8 whatever the page declares, and anything else is ranked by a
// statistical detector. A <meta> declaration only breaks ties between
// equally confident guesses.
func DetectEncodings(body []byte) []Encoding {
	declared, declaredName, certain := charset.DetermineEncoding(body, "")
	if certain {
		return []Encoding{{Name: declaredName, Enc: declared}}
	}
	if utf8.Valid(body) {
		return []Encoding{{Name: "utf-8", Enc: unicode.UTF8}}
	}
	if declaredName == "utf-8" || declaredName == "windows-1252" {
		// No usable declaration: utf-8 is contradicted by the bytes and
		// windows-1252 is the prescan default.
		declaredName = ""
	}

	var out []Encoding
	seen := map[string]bool{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		if enc, canonical := charset.Lookup(name); enc != nil && !seen[canonical] {
			seen[name], seen[canonical] = true, true
			out = append(out, Encoding{Name: canonical, Enc: enc})
		}
	}

	results, err := chardet.NewHtmlDetector().DetectAll(body)
	if err != nil {
		slog.Debug("charset detection failed", "err", err)
	}
	isDeclared := func(r chardet.Result) int {
		if _, canonical := charset.Lookup(chardetLabel(r.Charset)); declaredName != "" && canonical == declaredName {
			return 0
		}
		return 1
	}
	slices.SortStableFunc(results, func(a, b chardet.Result) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		return cmp.Compare(isDeclared(a), isDeclared(b))
	})
	for _, r := range results {
		add(chardetLabel(r.Charset))
	}
	add(declaredName)
	add(fallbackCharset)

	names := make([]string, len(out))
	for i, e := range out {
		names[i] = e.Name
	}
	slog.Debug("detected encodings", "candidates", names)
	return out
}

// chardetLabel maps detector charset names onto WHATWG labels.
func chardetLabel(name string) string {
	if name == "GB-18030" {
		return "gb18030"
	}
	return strings.ToLower(name)
}

// DecodeHTML converts body to UTF-8 using the most likely encoding from
// DetectEncodings.
func DecodeHTML(body []byte) io.Reader {
	return decode(body, DetectEncodings(body)[0])
}

func decode(body []byte, e Encoding) io.Reader {
	return e.Enc.NewDecoder().Reader(bytes.NewReader(body))
}

// CountVersions counts the edition links in a day's index page. It returns
// ErrLayoutChanged when the carousel box is absent and ErrNoCarousel when the
// box has no container.
func CountVersions(body []byte) (int, error) {
	doc, err := goquery.NewDocumentFromReader(DecodeHTML(body))
	if err != nil {
		return 0, fmt.Errorf("parsing index HTML: %w", err)
	}

	box := doc.Find(carouselBoxSelector).First()
	if box.Length() == 0 {
		return 0, ErrLayoutChanged
	}
	container := box.Find(carouselContainerSelector).First()
	if container.Length() == 0 {
		return 0, ErrNoCarousel
	}

	versions := 0
	container.Find(carouselSlideSelector).Each(func(_ int, slide *goquery.Selection) {
		if slide.Find("a").Length() > 0 {
			versions++
		}
	})
	return versions, nil
}

// FindPDFLink returns the absolute URL of the anchor whose trimmed text is
// PDFLinkLabel, resolving a relative href against pageURL. An empty href
// resolves to pageURL itself. Each candidate encoding from DetectEncodings
// is tried in turn until the label is found.
func FindPDFLink(body []byte, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}

	for _, enc := range DetectEncodings(body) {
		doc, err := goquery.NewDocumentFromReader(decode(body, enc))
		if err != nil {
			return "", fmt.Errorf("parsing edition HTML: %w", err)
		}
		href, ok := pdfHref(doc)
		if !ok {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return "", fmt.Errorf("parsing PDF href %q: %w", href, err)
		}
		return base.ResolveReference(ref).String(), nil
	}
	return "", ErrPDFLinkNotFound
}

// pdfHref returns the href of the first labelled anchor that has one.
func pdfHref(doc *goquery.Document) (href string, ok bool) {
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != PDFLinkLabel {
			return true
		}
		href, ok = a.Attr("href")
		return !ok
	})
	return href, ok
}
