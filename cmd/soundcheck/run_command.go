package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"soundcheck/internal/pipeline"
	"soundcheck/internal/render"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the nightly pipeline: enrich, match, verify, report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePipeline(ctx, cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Compute decisions without writing anything")
	cmd.Flags().BoolVar(&opts.SkipMatch, "skip-match", false, "Skip the matching stage")
	cmd.Flags().BoolVar(&opts.SkipVerify, "skip-verify", false, "Skip the verification stage")
	cmd.Flags().BoolVar(&opts.ForceEnrich, "force-enrich", false, "Refresh enrichment even for fresh cache entries")
	return cmd
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match show slots to videos without verifying",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePipeline(ctx, cmd, pipeline.Options{SkipVerify: true, DryRun: dryRun})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute decisions without writing anything")
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify currently assigned videos without re-matching",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePipeline(ctx, cmd, pipeline.Options{SkipMatch: true, DryRun: dryRun})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute verdicts without writing anything")
	return cmd
}

func executePipeline(cmdCtx *commandContext, cmd *cobra.Command, opts pipeline.Options) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return err
	}

	runner, cleanup, err := pipeline.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	runCtx, cancel := signalContext()
	defer cancel()

	result, err := runner.Run(runCtx, opts)
	if err != nil {
		return err
	}

	printRunSummary(cmd.OutOrStdout(), result, opts)
	return nil
}

func printRunSummary(out io.Writer, result *pipeline.Result, opts pipeline.Options) {
	colorize := render.Colorize(out)
	for _, line := range render.SectionHeader("Run summary", colorize) {
		fmt.Fprintln(out, line)
	}

	if opts.DryRun {
		fmt.Fprintln(out, render.StatusLine("Mode", render.Warn, "dry run, nothing written", colorize))
	}
	fmt.Fprintln(out, render.StatusLine("Searched", render.Info, fmt.Sprintf("%d", result.Searched), colorize))
	fmt.Fprintln(out, render.StatusLine("Kept", render.Info, fmt.Sprintf("%d", result.Kept), colorize))
	if result.Blocked > 0 {
		fmt.Fprintln(out, render.StatusLine("Awaiting override", render.Warn, fmt.Sprintf("%d", result.Blocked), colorize))
	}

	verifiedKind := render.OK
	if len(result.Delta.Verified) == 0 {
		verifiedKind = render.Info
	}
	fmt.Fprintln(out, render.StatusLine("Verified", verifiedKind, fmt.Sprintf("%d", len(result.Delta.Verified)), colorize))
	if recovered := result.Delta.RecoveredCount(); recovered > 0 {
		fmt.Fprintln(out, render.StatusLine("Recovered", render.OK, fmt.Sprintf("%d", recovered), colorize))
	}
	rejectedKind := render.Info
	if len(result.Delta.Rejected) > 0 {
		rejectedKind = render.Warn
	}
	fmt.Fprintln(out, render.StatusLine("Rejected", rejectedKind, fmt.Sprintf("%d", len(result.Delta.Rejected)), colorize))
	fmt.Fprintln(out, render.StatusLine("No preview", render.Info, fmt.Sprintf("%d", len(result.Queue)), colorize))

	if result.ReportPath != "" {
		fmt.Fprintln(out, render.StatusLine("Report", render.Info, result.ReportPath, colorize))
	}
}
