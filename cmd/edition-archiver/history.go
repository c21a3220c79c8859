// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/edition-archiver/internal/history"
	"github.com/pdiddy/edition-archiver/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the download history ledger",
	Long: `History reads the SQLite ledger written when history.path (--history) is
set. Every edition attempt is recorded with its outcome.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded edition attempts",
	RunE:  runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded edition attempts as YAML or JSON",
	RunE:  runHistoryExport,
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("begin", "", "first date (YYYYMMDD)")
		c.Flags().String("end", "", "last date (YYYYMMDD)")
		c.Flags().String("status", "", "only attempts with this status: downloaded, no_link or failed")
	}
	historyListCmd.Flags().Int("limit", 100, "maximum rows (negative for all)")
	historyExportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	historyCmd.AddCommand(historyListCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func openStore() (*history.Store, error) {
	path := viper.GetString("history.path")
	if path == "" {
		return nil, fmt.Errorf("no history ledger configured (set --history or history.path)")
	}
	return history.Open(path)
}

func historyFilter(cmd *cobra.Command) (history.Filter, error) {
	var f history.Filter
	if s, _ := cmd.Flags().GetString("begin"); s != "" {
		d, err := types.ParseEditionDate(s)
		if err != nil {
			return f, fmt.Errorf("--begin: %w", err)
		}
		f.Begin = d
	}
	if s, _ := cmd.Flags().GetString("end"); s != "" {
		d, err := types.ParseEditionDate(s)
		if err != nil {
			return f, fmt.Errorf("--end: %w", err)
		}
		f.End = d
	}
	status, _ := cmd.Flags().GetString("status")
	switch st := types.AttemptStatus(status); st {
	case "", types.AttemptDownloaded, types.AttemptNoLink, types.AttemptFailed:
		f.Status = st
	default:
		return f, fmt.Errorf("unknown status %q", status)
	}
	return f, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	f, err := historyFilter(cmd)
	if err != nil {
		return err
	}
	f.Limit, _ = cmd.Flags().GetInt("limit")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	attempts, err := store.List(cmd.Context(), f)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		fmt.Println("No attempts recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EDITION\tSTATUS\tBYTES\tAT\tERROR")
	for _, a := range attempts {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			a.Key(), a.Status, a.Bytes, a.At.Format("2006-01-02 15:04:05"), a.Error)
	}
	return tw.Flush()
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "yaml", "json"); err != nil {
		return err
	}
	f, err := historyFilter(cmd)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer file.Close()
		w = file
	}

	if format == "json" {
		return store.ExportJSON(cmd.Context(), w, f)
	}
	return store.ExportYAML(cmd.Context(), w, f)
}
