// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt reads validated answers from an interactive console.
// Malformed input is rejected and asked again; it never reaches the caller.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/edition-archiver/pkg/types"
)

// Console reads one answer per line.
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewConsole returns a Console reading r and writing prompts to w.
func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{in: bufio.NewScanner(r), out: w}
}

// Line prints label and returns the trimmed answer. It returns io.EOF when
// input is exhausted.
func (c *Console) Line(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// Date asks until the answer is a valid YYYYMMDD date.
func (c *Console) Date(label string) (types.EditionDate, error) {
	for {
		s, err := c.Line(label)
		if err != nil {
			return types.EditionDate{}, err
		}
		d, err := types.ParseEditionDate(s)
		if err == nil {
			return d, nil
		}
		fmt.Fprintln(c.out, "Invalid date format. Please make sure it's in YYYYMMDD format.")
	}
}

// EditionKey asks until the answer is a valid YYYYMMDDVV key.
func (c *Console) EditionKey(label string) (types.EditionDate, types.Version, error) {
	for {
		s, err := c.Line(label)
		if err != nil {
			return types.EditionDate{}, 0, err
		}
		d, v, err := types.ParseEditionKey(s)
		if err == nil {
			return d, v, nil
		}
		fmt.Fprintln(c.out, "Invalid edition format. Please make sure it's in YYYYMMDDVV format.")
	}
}

// Count asks until the answer is a non-negative integer.
func (c *Console) Count(label string) (int, error) {
	for {
		s, err := c.Line(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil && n >= 0 {
			return n, nil
		}
		fmt.Fprintln(c.out, "Invalid number. Please enter a whole number, 0 or more.")
	}
}

// Confirm asks until the answer is Y or N (case-insensitive).
func (c *Console) Confirm(label string) (bool, error) {
	for {
		s, err := c.Line(label)
		if err != nil {
			return false, err
		}
		switch strings.ToUpper(s) {
		case "Y", "YES":
			return true, nil
		case "N", "NO":
			return false, nil
		}
		fmt.Fprintln(c.out, "Invalid input, please input Y or N.")
	}
}

// ManualCount asks the operator how many editions d has. It has the
// signature of acquire.ManualCount.
func (c *Console) ManualCount(ctx context.Context, d types.EditionDate, indexURL string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fmt.Fprintf(c.out, "Edition list not found for %s.\nURL: %s\n", d, indexURL)
	return c.Count("Please input the number of editions by hand: ")
}
