// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edition-archiver/internal/acquire"
	"github.com/pdiddy/edition-archiver/internal/prompt"
	"github.com/pdiddy/edition-archiver/pkg/types"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Choose a download mode from a menu",
	Long: `Interactive prints today's date and asks for a download mode:

  C  a custom date range
  T  today's editions
  U  every date missing since archive.backfill_from
  S  single editions by YYYYMMDDVV key, repeated until end of input`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	drv, cfg, cleanup, err := newDriver()
	if err != nil {
		return err
	}
	defer cleanup()

	return menu(cmd.Context(), console, drv, cfg, types.Today(time.Now()), os.Stdout)
}

// menu runs one interactive session against c.
func menu(ctx context.Context, c *prompt.Console, drv *acquire.Driver, cfg types.ArchiveConfig, today types.EditionDate, w io.Writer) error {
	banner := strings.Repeat("#", 10)
	fmt.Fprintf(w, "%s Welcome to edition-archiver %s\n", banner, banner)
	fmt.Fprintf(w, "Today's date: %s. Today's weekday: %s\n", today, cfg.WeekdayLabel(today))
	fmt.Fprintf(w, "Download type:\n C: Customized dates\n T: Download today's editions\n U: Download editions from %s until today\n S: Download a specific edition (like 2024122401)\n", cfg.BackfillFrom)

	for {
		mode, err := c.Line("Please input type: ")
		if err != nil {
			return err
		}
		switch strings.ToUpper(mode) {
		case "C":
			return customRange(ctx, c, drv)
		case "T":
			r, err := drv.DownloadRange(ctx, today, today)
			return rangeError(r, err)
		case "U":
			return backfill(ctx, drv, cfg, today, c.Confirm, w)
		case "S":
			return singleEditions(ctx, c, drv, w)
		}
		fmt.Fprintln(w, "Invalid input, please input C, T, U or S.")
	}
}

func customRange(ctx context.Context, c *prompt.Console, drv *acquire.Driver) error {
	begin, err := c.Date("Please input start date (YYYYMMDD, like 19491001): ")
	if err != nil {
		return err
	}
	end, err := c.Date("Please input end date (YYYYMMDD, like 19491001): ")
	if err != nil {
		return err
	}
	r, err := drv.DownloadRange(ctx, begin, end)
	return rangeError(r, err)
}

// singleEditions downloads one edition per answer until input ends. A failed
// edition is reported by the driver and the loop asks again.
func singleEditions(ctx context.Context, c *prompt.Console, drv *acquire.Driver, w io.Writer) error {
	for {
		d, v, err := c.EditionKey("Please input date and version (like 2024122401): ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(w)
			return nil
		}
		if err != nil {
			return err
		}
		if err := drv.DownloadEdition(ctx, d, v); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
