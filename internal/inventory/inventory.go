// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inventory inspects the archive directory: which dates lack their
// first edition, and which archived PDFs are damaged. It never touches the
// network.
package inventory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/edition-archiver/pkg/types"
)

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	model.ConfigPath = "disable"
}

// MissingReport lists the dates in a range whose first edition is absent.
type MissingReport struct {
	Begin   types.EditionDate   `json:"begin" yaml:"begin"`
	End     types.EditionDate   `json:"end" yaml:"end"`
	Missing []types.EditionDate `json:"missing" yaml:"missing"`
}

// FindMissing returns, in chronological order, every date from begin to end
// whose {date}01.pdf is not present in dir. Later editions are not checked,
// so a date with edition 01 present but others missing is not reported.
func FindMissing(dir string, begin, end types.EditionDate) ([]types.EditionDate, error) {
	var missing []types.EditionDate
	for d := range types.Days(begin, end) {
		path := filepath.Join(dir, types.FileName(d, 1))
		_, err := os.Stat(path)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			missing = append(missing, d)
		default:
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
	}
	return missing, nil
}

// Report runs FindMissing and wraps the result for output.
func Report(dir string, begin, end types.EditionDate) (MissingReport, error) {
	missing, err := FindMissing(dir, begin, end)
	if err != nil {
		return MissingReport{}, err
	}
	return MissingReport{Begin: begin, End: end, Missing: missing}, nil
}

// FileCheck is the verification outcome for one archived PDF.
type FileCheck struct {
	Name  string `json:"name" yaml:"name"`
	Pages int    `json:"pages" yaml:"pages"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the file validated.
func (c FileCheck) OK() bool {
	return c.Error == ""
}

// Verify validates every archived edition file for the dates in range, in
// file-name order. Validation uses pdfcpu in relaxed mode; empty and
// truncated files fail.
func Verify(dir string, begin, end types.EditionDate) ([]FileCheck, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var checks []FileCheck
	for d := range types.Days(begin, end) {
		matches, err := filepath.Glob(filepath.Join(dir, d.String()+"[0-9][0-9].pdf"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, path := range matches {
			checks = append(checks, checkFile(path, conf))
		}
	}
	return checks, nil
}

func checkFile(path string, conf *model.Configuration) FileCheck {
	c := FileCheck{Name: filepath.Base(path)}

	info, err := os.Stat(path)
	if err != nil {
		c.Error = err.Error()
		return c
	}
	if info.Size() == 0 {
		c.Error = "empty file"
		return c
	}

	if err := api.ValidateFile(path, conf); err != nil {
		c.Error = err.Error()
		return c
	}
	pages, err := api.PageCountFile(path)
	if err != nil {
		c.Error = err.Error()
		return c
	}
	c.Pages = pages
	return c
}
