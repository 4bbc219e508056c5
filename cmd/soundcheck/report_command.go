package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"soundcheck/internal/report"
	"soundcheck/internal/shows"
	"soundcheck/internal/state"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Render pipeline reports",
	}
	reportCmd.AddCommand(newReportDailyCommand(ctx))
	reportCmd.AddCommand(newReportInventoryCommand(ctx))
	reportCmd.AddCommand(newReportTrendCommand(ctx))
	return reportCmd
}

func newReportDailyCommand(ctx *commandContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Print a stored daily report (most recent by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := ""
			if date != "" {
				path = filepath.Join(cfg.Paths.ReportDir, "video-report-"+date+".txt")
			} else {
				matches, err := filepath.Glob(filepath.Join(cfg.Paths.ReportDir, "video-report-*.txt"))
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					return fmt.Errorf("no daily reports in %s; run the pipeline first", cfg.Paths.ReportDir)
				}
				sort.Strings(matches)
				path = matches[len(matches)-1]
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read daily report: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Report date (YYYY-MM-DD)")
	return cmd
}

func newReportInventoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Show where every tracked artist stands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := state.Load(cfg.StatePath(), logger)
			if err != nil {
				return err
			}
			files, err := shows.LoadDir(cfg.Paths.DataDir, logger)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Inventory(store, files))
			return nil
		},
	}
}

func newReportTrendCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show the accuracy trend from nightly snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := report.LoadHistory(cfg.AccuracyHistoryPath())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Trend(entries, days, time.Now()))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Days of history to include")
	return cmd
}
