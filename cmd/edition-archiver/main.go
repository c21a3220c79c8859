// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the edition-archiver CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/edition-archiver/internal/acquire"
	"github.com/pdiddy/edition-archiver/internal/history"
	"github.com/pdiddy/edition-archiver/internal/prompt"
	"github.com/pdiddy/edition-archiver/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// console is shared by the interactive menu and the manual count fallback
// so both read from one stdin buffer.
var console = prompt.NewConsole(os.Stdin, os.Stdout)

// rootCmd is the base command for the edition-archiver CLI.
var rootCmd = &cobra.Command{
	Use:   "edition-archiver",
	Short: "Download daily newspaper editions as PDF files",
	Long: `edition-archiver downloads the daily editions of People's Daily from
paper.people.com.cn into a local archive directory, one file per edition
named YYYYMMDDVV.pdf.

Use download for a date range or today, edition for single editions,
missing and backfill to find and fill gaps, verify to check archived files,
and interactive for a guided menu.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./edition-archiver.yaml or ~/.config/edition-archiver/config.yaml)")
	pf.String("archive-dir", "editions", "directory for downloaded YYYYMMDDVV.pdf files")
	pf.String("base-url", "http://paper.people.com.cn/rmrb/", "archive root URL")
	pf.String("layout", string(types.LayoutAuto), "edition layout: auto, page or images")
	pf.String("cutover", "20241201", "first date served by the page layout in auto mode (YYYYMMDD)")
	pf.Duration("download-delay", defaultDelay, "pause after every PDF request")
	pf.Duration("date-delay", defaultDelay, "pause after each date")
	pf.String("backfill-from", "20250101", "first date checked by backfill and missing (YYYYMMDD)")
	pf.Duration("timeout", defaultTimeout, "HTTP request timeout")
	pf.String("user-agent", defaultUserAgent, "User-Agent header")
	pf.String("history", "", "SQLite download history file (empty disables history)")
	pf.Bool("no-prompt", false, "fail instead of asking for an edition count when the index is unrecognized")
	pf.BoolP("verbose", "v", false, "debug logging on stderr")

	for key, flag := range map[string]string{
		"archive.dir":            "archive-dir",
		"archive.base_url":       "base-url",
		"archive.layout":         "layout",
		"archive.cutover":        "cutover",
		"archive.download_delay": "download-delay",
		"archive.date_delay":     "date-delay",
		"archive.backfill_from":  "backfill-from",
		"http.timeout":           "timeout",
		"http.user_agent":        "user-agent",
		"history.path":           "history",
		"no_prompt":              "no-prompt",
		"verbose":                "verbose",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("edition-archiver")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "edition-archiver"))
		}
	}

	viper.SetEnvPrefix("EDITION_ARCHIVER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// archiveConfig assembles the validated archive settings from flags,
// environment and config file.
func archiveConfig() (types.ArchiveConfig, error) {
	cutover, err := types.ParseEditionDate(viper.GetString("archive.cutover"))
	if err != nil {
		return types.ArchiveConfig{}, fmt.Errorf("cutover: %w", err)
	}
	backfillFrom, err := types.ParseEditionDate(viper.GetString("archive.backfill_from"))
	if err != nil {
		return types.ArchiveConfig{}, fmt.Errorf("backfill-from: %w", err)
	}

	labels := types.DefaultWeekdayLabels
	if custom := viper.GetStringSlice("archive.weekday_labels"); len(custom) == len(labels) {
		copy(labels[:], custom)
	}

	cfg := types.ArchiveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		Dir:           viper.GetString("archive.dir"),
		BaseURL:       viper.GetString("archive.base_url"),
		Layout:        types.Layout(viper.GetString("archive.layout")),
		Cutover:       cutover,
		DownloadDelay: viper.GetDuration("archive.download_delay"),
		DateDelay:     viper.GetDuration("archive.date_delay"),
		BackfillFrom:  backfillFrom,
		WeekdayLabels: labels,
	}
	if err := cfg.Validate(); err != nil {
		return types.ArchiveConfig{}, err
	}
	return cfg, nil
}

// newDriver builds a Driver for the current configuration. The returned
// cleanup closes the history ledger.
func newDriver() (*acquire.Driver, types.ArchiveConfig, func(), error) {
	cfg, err := archiveConfig()
	if err != nil {
		return nil, cfg, nil, err
	}

	var manual acquire.ManualCount
	if !viper.GetBool("no_prompt") {
		manual = console.ManualCount
	}

	var recorder acquire.Recorder
	cleanup := func() {}
	if path := viper.GetString("history.path"); path != "" {
		store, err := history.Open(path)
		if err != nil {
			return nil, cfg, nil, err
		}
		recorder = store
		cleanup = func() { store.Close() }
	}

	drv, err := acquire.NewDriver(cfg, manual, recorder, os.Stdout)
	if err != nil {
		cleanup()
		return nil, cfg, nil, err
	}
	return drv, cfg, cleanup, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
