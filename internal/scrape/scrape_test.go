// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// indexPage builds a day index with n linked slides and one slide without
// a link, mirroring the archive's carousel markup.
func indexPage(n int) string {
	var b strings.Builder
	b.WriteString(`<html><head><meta charset="utf-8"></head><body>`)
	b.WriteString(`<div class="swiper-box"><div class="swiper-container"><div class="swiper-wrapper">`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<div class="swiper-slide"><a href="node_%02d.html">第%02d版</a></div>`, i, i)
	}
	b.WriteString(`<div class="swiper-slide"><span>广告</span></div>`)
	b.WriteString(`</div></div></div></body></html>`)
	return b.String()
}

func TestCountVersions(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    int
		wantErr error
	}{
		{"twenty editions", indexPage(20), 20, nil},
		{"single edition", indexPage(1), 1, nil},
		{"empty carousel", indexPage(0), 0, nil},
		{
			name:    "no carousel box",
			html:    `<html><body><div class="paper-bot"><a href="x">x</a></div></body></html>`,
			wantErr: ErrLayoutChanged,
		},
		{
			name:    "box without container",
			html:    `<html><body><div class="swiper-box"><div class="swiper-slide"><a>1</a></div></div></body></html>`,
			wantErr: ErrNoCarousel,
		},
		{"empty document", "", 0, ErrLayoutChanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountVersions([]byte(tt.html))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const editionPageURL = "http://paper.people.com.cn/rmrb/pc/layout/202412/24/node_01.html"

func TestFindPDFLink(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    string
		wantErr error
	}{
		{
			name: "relative href",
			html: `<html><body><p class="right btn"><a href="../../../attachement/202412/24/0aafcf40.pdf">PDF下载</a></p></body></html>`,
			want: "http://paper.people.com.cn/rmrb/pc/attachement/202412/24/0aafcf40.pdf",
		},
		{
			name: "absolute href",
			html: `<html><body><a href="https://cdn.example.com/a.pdf">PDF下载</a></body></html>`,
			want: "https://cdn.example.com/a.pdf",
		},
		{
			name: "text padded with whitespace",
			html: "<html><body><a href=\"/x.pdf\">\n  PDF下载\n</a></body></html>",
			want: "http://paper.people.com.cn/x.pdf",
		},
		{
			name: "first matching anchor wins",
			html: `<a href="/other.pdf">PDF</a><a href="/first.pdf">PDF下载</a><a href="/second.pdf">PDF下载</a>`,
			want: "http://paper.people.com.cn/first.pdf",
		},
		{
			name:    "label absent",
			html:    `<html><body><a href="/x.pdf">下载</a><a href="/y.pdf">PDF 下载全文</a></body></html>`,
			wantErr: ErrPDFLinkNotFound,
		},
		{
			name: "empty href resolves to the page itself",
			html: `<html><body><a href="">PDF下载</a></body></html>`,
			want: editionPageURL,
		},
		{
			name: "anchor without href is passed over",
			html: `<html><body><a>PDF下载</a><a href="/later.pdf">PDF下载</a></body></html>`,
			want: "http://paper.people.com.cn/later.pdf",
		},
		{
			name:    "label on anchor without href",
			html:    `<html><body><a>PDF下载</a></body></html>`,
			wantErr: ErrPDFLinkNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindPDFLink([]byte(tt.html), editionPageURL)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindPDFLink_GBKPage(t *testing.T) {
	page := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=gb2312"></head>` +
		`<body><a href="attachement/a.pdf">PDF下载</a></body></html>`
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(page)
	require.NoError(t, err)

	got, err := FindPDFLink([]byte(encoded), "http://paper.people.com.cn/rmrb/html/2024-11/18/nw.htm")
	require.NoError(t, err)
	assert.Equal(t, "http://paper.people.com.cn/rmrb/html/2024-11/18/attachement/a.pdf", got)
}

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(encoded)
}

func TestFindPDFLink_GBKWithoutDeclaration(t *testing.T) {
	got, err := FindPDFLink(gbk(t, `<a href=a.pdf>PDF下载</a>`), editionPageURL)
	require.NoError(t, err)
	assert.Equal(t, "http://paper.people.com.cn/rmrb/pc/layout/202412/24/a.pdf", got)
}

func TestFindPDFLink_UTF8DeclaredAsGB2312(t *testing.T) {
	page := `<html><head><meta charset="gb2312"></head><body><a href="a.pdf">PDF下载</a></body></html>`
	got, err := FindPDFLink([]byte(page), editionPageURL)
	require.NoError(t, err)
	assert.Equal(t, "http://paper.people.com.cn/rmrb/pc/layout/202412/24/a.pdf", got)
}

func TestFindPDFLink_GBKDeclaredAsUTF8(t *testing.T) {
	page := gbk(t, `<html><head><meta charset="utf-8"></head><body><p>人民日报</p><a href="a.pdf">PDF下载</a></body></html>`)
	got, err := FindPDFLink(page, editionPageURL)
	require.NoError(t, err)
	assert.Equal(t, "http://paper.people.com.cn/rmrb/pc/layout/202412/24/a.pdf", got)
}

func encodingNames(encs []Encoding) []string {
	names := make([]string, len(encs))
	for i, e := range encs {
		names[i] = e.Name
	}
	return names
}

func TestDetectEncodings(t *testing.T) {
	t.Run("valid utf-8 ignores declaration", func(t *testing.T) {
		page := `<meta charset="gb2312"><p>人民日报</p>`
		assert.Equal(t, []string{"utf-8"}, encodingNames(DetectEncodings([]byte(page))))
	})

	t.Run("byte order mark is decisive", func(t *testing.T) {
		page := append([]byte{0xEF, 0xBB, 0xBF}, `<meta charset="gb2312"><p>x</p>`...)
		assert.Equal(t, []string{"utf-8"}, encodingNames(DetectEncodings(page)))
	})

	t.Run("non utf-8 keeps declaration and fallback", func(t *testing.T) {
		page := gbk(t, `<meta charset="gb2312"><p>人民日报 第01版：要闻</p>`)
		names := encodingNames(DetectEncodings(page))
		assert.Contains(t, names, "gbk")
		assert.Contains(t, names, "gb18030")
	})

	t.Run("undeclared non utf-8 falls back to gb18030", func(t *testing.T) {
		names := encodingNames(DetectEncodings(gbk(t, `<p>人民日报</p>`)))
		require.NotEmpty(t, names)
		assert.Contains(t, names, "gb18030")
	})
}

func TestCountVersions_GBKWithoutDeclaration(t *testing.T) {
	page := strings.Replace(indexPage(3), `<meta charset="utf-8">`, "", 1)
	n, err := CountVersions(gbk(t, page))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFindPDFLink_BadPageURL(t *testing.T) {
	_, err := FindPDFLink([]byte(`<a href="a.pdf">PDF下载</a>`), "://bad")
	assert.Error(t, err)
}
