package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edition-archiver/internal/acquire"
	"github.com/pdiddy/edition-archiver/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 2 * time.Second
	defaultUserAgent = "edition-archiver/0.1"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download every edition in a date range",
	Long: `Download walks the dates from --begin to --end inclusive. For each date
it reads the edition list from the index page, then downloads every
edition's PDF into the archive directory as YYYYMMDDVV.pdf, overwriting
existing files. Each PDF is written to a temporary file in the archive
directory and renamed into place once complete, so an interrupted download
leaves the previous file (or none) rather than a truncated one.

If a date's edition list cannot be read the run stops at that date.
A failed edition is reported and the run continues.`,
	Example: `  edition-archiver download --begin 20250101 --end 20250107
  edition-archiver download --today`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("begin", "", "first date (YYYYMMDD)")
	downloadCmd.Flags().String("end", "", "last date (YYYYMMDD, default: --begin)")
	downloadCmd.Flags().Bool("today", false, "download today's editions")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	today, _ := cmd.Flags().GetBool("today")
	beginStr, _ := cmd.Flags().GetString("begin")
	endStr, _ := cmd.Flags().GetString("end")

	if today && beginStr != "" {
		return fmt.Errorf("--today and --begin are mutually exclusive")
	}
	if !today && beginStr == "" {
		return fmt.Errorf("provide --begin or --today")
	}

	drv, _, cleanup, err := newDriver()
	if err != nil {
		return err
	}
	defer cleanup()

	var result acquire.RangeResult
	if today {
		result, err = drv.DownloadToday(cmd.Context())
	} else {
		begin, end, perr := parseRange(beginStr, endStr)
		if perr != nil {
			return perr
		}
		result, err = drv.DownloadRange(cmd.Context(), begin, end)
	}
	return rangeError(result, err)
}

// parseRange parses the --begin/--end pair. An empty end means a one-day
// range.
func parseRange(beginStr, endStr string) (types.EditionDate, types.EditionDate, error) {
	begin, err := types.ParseEditionDate(beginStr)
	if err != nil {
		return begin, begin, fmt.Errorf("--begin: %w", err)
	}
	if endStr == "" {
		return begin, begin, nil
	}
	end, err := types.ParseEditionDate(endStr)
	if err != nil {
		return begin, end, fmt.Errorf("--end: %w", err)
	}
	if end.Before(begin) {
		return begin, end, fmt.Errorf("--end %s is before --begin %s", end, begin)
	}
	return begin, end, nil
}

// rangeError turns a range outcome into the command's exit error.
func rangeError(result acquire.RangeResult, err error) error {
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d edition(s) failed", result.Failed)
	}
	return nil
}
