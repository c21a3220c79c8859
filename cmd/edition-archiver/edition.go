package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edition-archiver/pkg/types"
)

var editionCmd = &cobra.Command{
	Use:   "edition KEY...",
	Short: "Download single editions by YYYYMMDDVV key",
	Long: `Edition downloads known editions without reading the day's edition list.
Each key is the date followed by the two-digit edition number, for example
2024122401 for the first edition of 24 December 2024.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEdition,
}

func init() {
	rootCmd.AddCommand(editionCmd)
}

func runEdition(cmd *cobra.Command, args []string) error {
	type key struct {
		date    types.EditionDate
		version types.Version
	}
	keys := make([]key, 0, len(args))
	for _, arg := range args {
		d, v, err := types.ParseEditionKey(arg)
		if err != nil {
			return fmt.Errorf("%q: %w", arg, err)
		}
		keys = append(keys, key{d, v})
	}

	drv, _, cleanup, err := newDriver()
	if err != nil {
		return err
	}
	defer cleanup()

	failed := 0
	for _, k := range keys {
		if err := drv.DownloadEdition(cmd.Context(), k.date, k.version); err != nil {
			if cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d edition(s) failed", failed, len(keys))
	}
	return nil
}
