package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/edition-archiver/internal/inventory"
	"github.com/pdiddy/edition-archiver/pkg/types"
)

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List dates whose first edition is not archived",
	Long: `Missing checks the archive directory for YYYYMMDD01.pdf on every date from
--begin (default: archive.backfill_from) to --end (default: today) and
lists the dates where it is absent.`,
	RunE: runMissing,
}

func init() {
	missingCmd.Flags().String("begin", "", "first date (YYYYMMDD, default: archive.backfill_from)")
	missingCmd.Flags().String("end", "", "last date (YYYYMMDD, default: today)")
	missingCmd.Flags().String("format", "text", "output format: text, yaml or json")

	rootCmd.AddCommand(missingCmd)
}

func runMissing(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "text", "yaml", "json"); err != nil {
		return err
	}

	cfg, err := archiveConfig()
	if err != nil {
		return err
	}
	begin, end, err := reportRange(cmd, cfg)
	if err != nil {
		return err
	}

	report, err := inventory.Report(cfg.Dir, begin, end)
	if err != nil {
		return err
	}
	return writeMissing(os.Stdout, report, format)
}

// reportRange reads --begin and --end with the backfill_from and today
// defaults.
func reportRange(cmd *cobra.Command, cfg types.ArchiveConfig) (types.EditionDate, types.EditionDate, error) {
	begin, end := cfg.BackfillFrom, types.Today(time.Now())
	if s, _ := cmd.Flags().GetString("begin"); s != "" {
		d, err := types.ParseEditionDate(s)
		if err != nil {
			return begin, end, fmt.Errorf("--begin: %w", err)
		}
		begin = d
	}
	if s, _ := cmd.Flags().GetString("end"); s != "" {
		d, err := types.ParseEditionDate(s)
		if err != nil {
			return begin, end, fmt.Errorf("--end: %w", err)
		}
		end = d
	}
	return begin, end, nil
}

func writeMissing(w io.Writer, r inventory.MissingReport, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	if len(r.Missing) == 0 {
		fmt.Fprintf(w, "There is no missing date from %s until %s\n", r.Begin, r.End)
		return nil
	}
	fmt.Fprintln(w, "The missing dates:")
	for _, d := range r.Missing {
		fmt.Fprintln(w, d)
	}
	return nil
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q", format)
}
