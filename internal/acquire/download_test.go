// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edition-archiver/internal/httputil"
	"github.com/pdiddy/edition-archiver/internal/locate"
	"github.com/pdiddy/edition-archiver/internal/scrape"
	"github.com/pdiddy/edition-archiver/pkg/types"
)

func TestDownloader_WritesAndOverwrites(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "2024070901.pdf")
	require.NoError(t, os.WriteFile(dest, []byte("stale partial content that is longer"), 0o644))

	dl := &Downloader{Client: &httputil.Client{HTTP: ts.Client()}}
	n, err := dl.Download(context.Background(), ts.URL+"/a.pdf", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len(fakePDFContent)), n)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent, string(data))
	assert.Equal(t, []string{"2024070901.pdf"}, pdfNames(t, dir), "no temp files left behind")
}

func TestDownloader_StatusErrorLeavesNoFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "2024070901.pdf")
	dl := &Downloader{Client: &httputil.Client{HTTP: ts.Client()}}
	_, err := dl.Download(context.Background(), ts.URL+"/a.pdf", dest)

	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.NoFileExists(t, dest)
}

func TestDownloader_PausesAfterFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	dl := &Downloader{Client: &httputil.Client{HTTP: ts.Client()}, Delay: 50 * time.Millisecond}
	start := time.Now()
	_, err := dl.Download(context.Background(), ts.URL, filepath.Join(t.TempDir(), "x.pdf"))
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPDFLinkResolver(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rmrb/pc/layout/202412/24/node_01.html":
			fmt.Fprint(w, `<a href="../../../attachement/202412/24/0aafcf40.pdf">PDF下载</a>`)
		case "/rmrb/pc/layout/202412/24/node_02.html":
			fmt.Fprint(w, `<a href="#">返回目录</a>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	r := &PDFLinkResolver{Client: &httputil.Client{HTTP: ts.Client()}}
	ctx := context.Background()

	got, err := r.Resolve(ctx, ts.URL+"/rmrb/pc/layout/202412/24/node_01.html")
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/rmrb/pc/attachement/202412/24/0aafcf40.pdf", got)

	_, err = r.Resolve(ctx, ts.URL+"/rmrb/pc/layout/202412/24/node_02.html")
	assert.ErrorIs(t, err, scrape.ErrPDFLinkNotFound)

	_, err = r.Resolve(ctx, ts.URL+"/rmrb/pc/layout/202412/24/node_09.html")
	var se *httputil.StatusError
	assert.True(t, errors.As(err, &se))
}

func TestIndexResolver(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/202407/09/"):
			fmt.Fprint(w, carouselHTML(20))
		case strings.Contains(r.URL.Path, "/202407/10/"):
			fmt.Fprint(w, `<html><body>no carousel</body></html>`)
		case strings.Contains(r.URL.Path, "/202407/11/"):
			fmt.Fprint(w, `<div class="swiper-box"></div>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	client := &httputil.Client{HTTP: ts.Client()}
	selector, err := locate.NewSelector(types.ArchiveConfig{BaseURL: ts.URL + "/rmrb/", Layout: types.LayoutPage}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("counts carousel links", func(t *testing.T) {
		r := &IndexResolver{Client: client, Locators: selector}
		n, err := r.VersionCount(ctx, mustDate(t, "20240709"))
		require.NoError(t, err)
		assert.Equal(t, 20, n)
	})

	t.Run("fetch failure is an error", func(t *testing.T) {
		r := &IndexResolver{Client: client, Locators: selector}
		_, err := r.VersionCount(ctx, mustDate(t, "20240712"))
		require.Error(t, err)
	})

	t.Run("missing carousel without callback", func(t *testing.T) {
		r := &IndexResolver{Client: client, Locators: selector}
		_, err := r.VersionCount(ctx, mustDate(t, "20240710"))
		assert.ErrorIs(t, err, ErrNoManualCount)
		assert.ErrorIs(t, err, scrape.ErrLayoutChanged)
	})

	t.Run("missing carousel uses callback", func(t *testing.T) {
		r := &IndexResolver{Client: client, Locators: selector, Manual: func(context.Context, types.EditionDate, string) (int, error) {
			return 8, nil
		}}
		n, err := r.VersionCount(ctx, mustDate(t, "20240710"))
		require.NoError(t, err)
		assert.Equal(t, 8, n)
	})

	t.Run("negative manual count rejected", func(t *testing.T) {
		r := &IndexResolver{Client: client, Locators: selector, Manual: func(context.Context, types.EditionDate, string) (int, error) {
			return -1, nil
		}}
		_, err := r.VersionCount(ctx, mustDate(t, "20240710"))
		assert.Error(t, err)
	})

	t.Run("box without container is not recoverable", func(t *testing.T) {
		called := false
		r := &IndexResolver{Client: client, Locators: selector, Manual: func(context.Context, types.EditionDate, string) (int, error) {
			called = true
			return 1, nil
		}}
		_, err := r.VersionCount(ctx, mustDate(t, "20240711"))
		assert.ErrorIs(t, err, scrape.ErrNoCarousel)
		assert.False(t, called)
	})
}
