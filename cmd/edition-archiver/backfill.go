package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edition-archiver/internal/acquire"
	"github.com/pdiddy/edition-archiver/internal/inventory"
	"github.com/pdiddy/edition-archiver/pkg/types"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Download the dates missing from the archive",
	Long: `Backfill lists every date from archive.backfill_from until today whose
first edition is not archived, asks for confirmation and downloads each
missing date. A date whose edition list cannot be read is reported and
skipped; the remaining dates are still downloaded.`,
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	drv, cfg, cleanup, err := newDriver()
	if err != nil {
		return err
	}
	defer cleanup()

	confirm := console.Confirm
	if yes {
		confirm = nil
	}
	return backfill(cmd.Context(), drv, cfg, types.Today(time.Now()), confirm, os.Stdout)
}

// backfill finds the dates missing up to today, asks confirm (when non-nil)
// and downloads them.
func backfill(ctx context.Context, drv *acquire.Driver, cfg types.ArchiveConfig, today types.EditionDate, confirm func(string) (bool, error), w io.Writer) error {
	report, err := inventory.Report(cfg.Dir, cfg.BackfillFrom, today)
	if err != nil {
		return err
	}
	if err := writeMissing(w, report, "text"); err != nil {
		return err
	}
	if len(report.Missing) == 0 {
		return nil
	}

	if confirm != nil {
		ok, err := confirm("Download (Y/N)? ")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	result, halted, err := drv.Backfill(ctx, report.Missing)
	if err != nil {
		return err
	}
	if len(halted) > 0 {
		fmt.Fprintf(w, "Edition list unavailable for %d date(s):", len(halted))
		for _, d := range halted {
			fmt.Fprintf(w, " %s", d)
		}
		fmt.Fprintln(w)
	}
	if result.Failed > 0 || len(halted) > 0 {
		return fmt.Errorf("backfill incomplete: %d edition(s) failed, %d date(s) unavailable", result.Failed, len(halted))
	}
	return nil
}
