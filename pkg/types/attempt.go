// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AttemptStatus is the outcome of one edition download attempt.
type AttemptStatus string

const (
	AttemptDownloaded AttemptStatus = "downloaded"
	AttemptNoLink     AttemptStatus = "no_link"
	AttemptFailed     AttemptStatus = "failed"
)

// Attempt records a single (date, version) download attempt.
type Attempt struct {
	Date    EditionDate   `json:"date" yaml:"date"`
	Version Version       `json:"version" yaml:"version"`
	URL     string        `json:"url,omitempty" yaml:"url,omitempty"`
	Path    string        `json:"path" yaml:"path"`
	Status  AttemptStatus `json:"status" yaml:"status"`
	Bytes   int64         `json:"bytes" yaml:"bytes"`
	Error   string        `json:"error,omitempty" yaml:"error,omitempty"`
	At      time.Time     `json:"at" yaml:"at"`
}

// Key returns the YYYYMMDDVV edition key.
func (a Attempt) Key() string {
	return a.Date.String() + a.Version.String()
}
