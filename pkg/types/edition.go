// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the edition archiver.
package types

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"time"
)

// ErrInvalidDate is returned when a string is not an 8-digit YYYYMMDD date
// naming a real calendar day.
var ErrInvalidDate = errors.New("invalid edition date")

// ErrInvalidVersion is returned for version numbers outside 1..99.
var ErrInvalidVersion = errors.New("invalid edition version")

const dateLayout = "20060102"

// EditionDate identifies one day's publication. The zero value is not a
// valid date; construct with ParseEditionDate, NewEditionDate or Today.
type EditionDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewEditionDate normalizes year/month/day the way time.Date does, so
// NewEditionDate(2024, 2, 30) is 2024-03-01.
func NewEditionDate(year int, month time.Month, day int) EditionDate {
	return dateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Today returns the edition date for the calendar day of now in now's
// location.
func Today(now time.Time) EditionDate {
	y, m, d := now.Date()
	return EditionDate{Year: y, Month: m, Day: d}
}

// ParseEditionDate parses an 8-digit YYYYMMDD string.
func ParseEditionDate(s string) (EditionDate, error) {
	if len(s) != 8 || !isDigits(s) {
		return EditionDate{}, fmt.Errorf("%w: %q (want YYYYMMDD)", ErrInvalidDate, s)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return EditionDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return dateOf(t), nil
}

func dateOf(t time.Time) EditionDate {
	y, m, d := t.Date()
	return EditionDate{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date.
func (d EditionDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYYMMDD.
func (d EditionDate) String() string {
	return d.Time().Format(dateLayout)
}

// IsZero reports whether d is the zero value.
func (d EditionDate) IsZero() bool {
	return d == EditionDate{}
}

// Next returns the following calendar day.
func (d EditionDate) Next() EditionDate {
	return dateOf(d.Time().AddDate(0, 0, 1))
}

// Before reports whether d is strictly earlier than other.
func (d EditionDate) Before(other EditionDate) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is strictly later than other.
func (d EditionDate) After(other EditionDate) bool {
	return d.Time().After(other.Time())
}

// Weekday returns the day of the week.
func (d EditionDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// YearMonth returns "YYYYMM", used by the page-layout URL scheme.
func (d EditionDate) YearMonth() string {
	return d.Time().Format("200601")
}

// YearDashMonth returns "YYYY-MM", used by the legacy image archive.
func (d EditionDate) YearDashMonth() string {
	return d.Time().Format("2006-01")
}

// DayOfMonth returns the zero-padded day "DD".
func (d EditionDate) DayOfMonth() string {
	return fmt.Sprintf("%02d", d.Day)
}

// MarshalText implements encoding.TextMarshaler so dates serialize as
// YYYYMMDD in YAML and JSON.
func (d EditionDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *EditionDate) UnmarshalText(b []byte) error {
	parsed, err := ParseEditionDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Days yields every date from begin to end inclusive, one calendar day at
// a time. It yields nothing when begin is after end.
func Days(begin, end EditionDate) iter.Seq[EditionDate] {
	return func(yield func(EditionDate) bool) {
		for d := begin; !d.After(end); d = d.Next() {
			if !yield(d) {
				return
			}
		}
	}
}

// Version is the 1-based index of an edition page for a date.
type Version int

// String zero-pads to two digits: 1 -> "01", 10 -> "10".
func (v Version) String() string {
	return fmt.Sprintf("%02d", int(v))
}

// ParseVersion parses "1".."99" with or without a leading zero.
func ParseVersion(s string) (Version, error) {
	if s == "" || len(s) > 2 || !isDigits(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	n, _ := strconv.Atoi(s)
	if n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return Version(n), nil
}

// FileName returns the archive file name for one edition: {YYYYMMDD}{VV}.pdf.
func FileName(d EditionDate, v Version) string {
	return d.String() + v.String() + ".pdf"
}

// ParseEditionKey splits a 10-digit YYYYMMDDVV key into date and version.
func ParseEditionKey(key string) (EditionDate, Version, error) {
	if len(key) != 10 || !isDigits(key) {
		return EditionDate{}, 0, fmt.Errorf("invalid edition key %q: want YYYYMMDDVV", key)
	}
	d, err := ParseEditionDate(key[:8])
	if err != nil {
		return EditionDate{}, 0, err
	}
	v, err := ParseVersion(key[8:])
	if err != nil {
		return EditionDate{}, 0, err
	}
	return d, v, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
