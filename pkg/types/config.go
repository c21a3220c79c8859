package types

import (
	"fmt"
	"net/url"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "edition-archiver/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Layout names the upstream URL scheme used to locate editions.
type Layout string

const (
	// LayoutAuto picks the image archive before the cutover date and the
	// page layout from the cutover onward.
	LayoutAuto   Layout = "auto"
	LayoutPage   Layout = "page"
	LayoutImages Layout = "images"
)

// DefaultWeekdayLabels are indexed by time.Weekday (Sunday = 0).
var DefaultWeekdayLabels = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// ArchiveConfig holds settings for downloading editions into the archive
// directory.
type ArchiveConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Dir is the destination directory for {YYYYMMDD}{VV}.pdf files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// BaseURL is the archive root, e.g. "http://paper.people.com.cn/rmrb/".
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Layout selects the edition locator: auto, page or images.
	Layout Layout `json:"layout" yaml:"layout" mapstructure:"layout"`

	// Cutover is the first date served by the page layout in auto mode.
	Cutover EditionDate `json:"cutover" yaml:"cutover" mapstructure:"-"`

	// DownloadDelay is the pause after every PDF request (default 2s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay" mapstructure:"download_delay"`

	// DateDelay is the pause after each date in a range (default 2s).
	DateDelay time.Duration `json:"date_delay" yaml:"date_delay" mapstructure:"date_delay"`

	// BackfillFrom is the first date checked by backfill.
	BackfillFrom EditionDate `json:"backfill_from" yaml:"backfill_from" mapstructure:"-"`

	// WeekdayLabels names weekdays in progress output, indexed by time.Weekday.
	WeekdayLabels [7]string `json:"weekday_labels" yaml:"weekday_labels" mapstructure:"-"`
}

// WeekdayLabel returns the configured label for d, falling back to the
// English day name when the label is empty.
func (c ArchiveConfig) WeekdayLabel(d EditionDate) string {
	wd := d.Weekday()
	if l := c.WeekdayLabels[wd]; l != "" {
		return l
	}
	return wd.String()
}

// Validate reports configuration errors before any request is made.
func (c ArchiveConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("archive directory is empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	switch c.Layout {
	case LayoutAuto, LayoutPage, LayoutImages:
	default:
		return fmt.Errorf("unknown layout %q: use auto, page or images", c.Layout)
	}
	if c.Layout == LayoutAuto && c.Cutover.IsZero() {
		return fmt.Errorf("layout auto requires a cutover date")
	}
	if c.DownloadDelay < 0 || c.DateDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}
