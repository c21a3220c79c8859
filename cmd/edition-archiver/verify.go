package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/edition-archiver/internal/inventory"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check archived PDF files for corruption",
	Long: `Verify validates every YYYYMMDDVV.pdf in the archive directory for the
dates from --begin (default: archive.backfill_from) to --end (default:
today) and reports empty, truncated or malformed files.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("begin", "", "first date (YYYYMMDD, default: archive.backfill_from)")
	verifyCmd.Flags().String("end", "", "last date (YYYYMMDD, default: today)")
	verifyCmd.Flags().String("format", "text", "output format: text, yaml or json")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	checks, err := inventory.Verify(cfg.Dir, begin, end)
	if err != nil {
		return err
	}
	if err := writeChecks(os.Stdout, checks, format); err != nil {
		return err
	}

	bad := 0
	for _, c := range checks {
		if !c.OK() {
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d file(s) invalid", bad, len(checks))
	}
	return nil
}

func writeChecks(w io.Writer, checks []inventory.FileCheck, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(checks); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(checks)
	}

	for _, c := range checks {
		if c.OK() {
			fmt.Fprintf(w, "ok:      %s (%d pages)\n", c.Name, c.Pages)
		} else {
			fmt.Fprintf(w, "invalid: %s (%s)\n", c.Name, c.Error)
		}
	}
	fmt.Fprintf(w, "\nVerify summary: %d file(s) checked\n", len(checks))
	return nil
}
