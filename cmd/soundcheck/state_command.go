package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"soundcheck/internal/render"
	"soundcheck/internal/state"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect recorded video states",
	}
	stateCmd.AddCommand(newStateListCommand(ctx))
	stateCmd.AddCommand(newStateShowCommand(ctx))
	return stateCmd
}

func newStateListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every artist's recorded state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(ctx)
			if err != nil {
				return err
			}

			var rows [][]string
			for _, artist := range store.Artists() {
				record, _ := store.Get(artist)
				if statusFilter != "" && record.Status != statusFilter {
					continue
				}
				date := ""
				switch record.Status {
				case state.StatusVerified:
					date = record.VerifiedDate.Format("2006-01-02")
				case state.StatusRejected:
					date = record.RejectedDate.Format("2006-01-02")
				}
				detail := record.Confidence
				if record.Status == state.StatusRejected {
					detail = record.Reason
				}
				rows = append(rows, []string{artist, record.Status, record.VideoID, date, detail})
			}

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded states.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Table(
				[]string{"Artist", "Status", "Video", "Date", "Detail"},
				rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "", "Only list records with this status (verified, rejected, override_null)")
	return cmd
}

func newStateShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <artist>",
		Short: "Show the full record for one artist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(ctx)
			if err != nil {
				return err
			}
			record, found := store.Get(args[0])
			if !found {
				return fmt.Errorf("no recorded state for %q", args[0])
			}

			out := cmd.OutOrStdout()
			colorize := render.Colorize(out)
			kind := render.Info
			switch record.Status {
			case state.StatusVerified:
				kind = render.OK
			case state.StatusRejected:
				kind = render.Warn
			}
			fmt.Fprintln(out, render.StatusLine("Status", kind, record.Status, colorize))
			if record.VideoID != "" {
				fmt.Fprintln(out, render.StatusLine("Video", render.Info, "youtube.com/watch?v="+record.VideoID, colorize))
			}
			if !record.VerifiedDate.IsZero() {
				fmt.Fprintln(out, render.StatusLine("Verified", render.Info, record.VerifiedDate.Format("2006-01-02"), colorize))
			}
			if !record.RejectedDate.IsZero() {
				fmt.Fprintln(out, render.StatusLine("Rejected", render.Info, record.RejectedDate.Format("2006-01-02"), colorize))
			}
			if record.Confidence != "" {
				fmt.Fprintln(out, render.StatusLine("Confidence", render.Info, record.Confidence, colorize))
			}
			if record.Reason != "" {
				fmt.Fprintln(out, render.StatusLine("Reason", render.Info, record.Reason, colorize))
			}
			if meta := record.Metadata; meta != nil {
				fmt.Fprintln(out, render.StatusLine("Title", render.Info, meta.Title, colorize))
				fmt.Fprintln(out, render.StatusLine("Channel", render.Info, meta.ChannelName, colorize))
				fmt.Fprintln(out, render.StatusLine("Views", render.Info, fmt.Sprintf("%d", meta.ViewCount), colorize))
			}
			return nil
		},
	}
}

func loadStore(ctx *commandContext) (*state.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	return state.Load(cfg.StatePath(), logger)
}
