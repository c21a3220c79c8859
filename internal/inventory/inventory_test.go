// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edition-archiver/pkg/types"
)

func mustDate(t *testing.T, s string) types.EditionDate {
	t.Helper()
	d, err := types.ParseEditionDate(s)
	require.NoError(t, err)
	return d
}

func touch(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
}

func dateStrings(ds []types.EditionDate) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.String())
	}
	return out
}

func TestFindMissing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2025010201.pdf", nil)

	missing, err := FindMissing(dir, mustDate(t, "20250101"), mustDate(t, "20250103"))
	require.NoError(t, err)
	assert.Equal(t, []string{"20250101", "20250103"}, dateStrings(missing))
}

func TestFindMissing_AllPresent(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"20241230", "20241231", "20250101", "20250102"} {
		touch(t, dir, d+"01.pdf", []byte("x"))
	}
	begin, end := mustDate(t, "20241230"), mustDate(t, "20250102")

	missing, err := FindMissing(dir, begin, end)
	require.NoError(t, err)
	assert.Empty(t, missing)

	// Removing one first edition reports exactly that date.
	require.NoError(t, os.Remove(filepath.Join(dir, "2024123101.pdf")))
	missing, err = FindMissing(dir, begin, end)
	require.NoError(t, err)
	assert.Equal(t, []string{"20241231"}, dateStrings(missing))
}

func TestFindMissing_OnlyFirstEditionChecked(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2025010101.pdf", nil)
	touch(t, dir, "2025010202.pdf", nil)
	touch(t, dir, "2025010203.pdf", nil)

	missing, err := FindMissing(dir, mustDate(t, "20250101"), mustDate(t, "20250102"))
	require.NoError(t, err)
	assert.Equal(t, []string{"20250102"}, dateStrings(missing))
}

func TestFindMissing_MissingDirReportsEverything(t *testing.T) {
	missing, err := FindMissing(filepath.Join(t.TempDir(), "nope"), mustDate(t, "20250101"), mustDate(t, "20250102"))
	require.NoError(t, err)
	assert.Equal(t, []string{"20250101", "20250102"}, dateStrings(missing))
}

func TestFindMissing_EmptyRange(t *testing.T) {
	missing, err := FindMissing(t.TempDir(), mustDate(t, "20250102"), mustDate(t, "20250101"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestReport(t *testing.T) {
	r, err := Report(t.TempDir(), mustDate(t, "20250101"), mustDate(t, "20250101"))
	require.NoError(t, err)
	assert.Equal(t, "20250101", r.Begin.String())
	assert.Equal(t, []string{"20250101"}, dateStrings(r.Missing))
}

// minimalPDF builds a one-page PDF with a correct cross-reference table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << >> >>",
	}
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return []byte(b.String())
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2025010101.pdf", minimalPDF())
	touch(t, dir, "2025010102.pdf", nil)
	touch(t, dir, "2025010103.pdf", []byte("%PDF-1.4 fake"))
	touch(t, dir, "2025010201.pdf", minimalPDF())
	touch(t, dir, "2025010301.pdf", minimalPDF()) // outside range
	touch(t, dir, "notes.txt", []byte("ignored"))

	checks, err := Verify(dir, mustDate(t, "20250101"), mustDate(t, "20250102"))
	require.NoError(t, err)
	require.Len(t, checks, 4)

	assert.Equal(t, "2025010101.pdf", checks[0].Name)
	assert.True(t, checks[0].OK(), checks[0].Error)
	assert.Equal(t, 1, checks[0].Pages)

	assert.Equal(t, "2025010102.pdf", checks[1].Name)
	assert.Equal(t, "empty file", checks[1].Error)

	assert.Equal(t, "2025010103.pdf", checks[2].Name)
	assert.False(t, checks[2].OK())

	assert.Equal(t, "2025010201.pdf", checks[3].Name)
	assert.True(t, checks[3].OK(), checks[3].Error)
}
