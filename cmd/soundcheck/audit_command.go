package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"soundcheck/internal/render"
	"soundcheck/internal/scoring"
	"soundcheck/internal/shows"
	"soundcheck/internal/youtube"
)

// auditResult is the per-slot outcome of an accuracy pass.
type auditResult struct {
	Artist  string `json:"artist"`
	Venue   string `json:"venue"`
	Role    string `json:"role"`
	VideoID string `json:"video_id,omitempty"`
	Tier    string `json:"tier"`
	Score   int    `json:"score,omitempty"`
	Title   string `json:"title,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type auditStats struct {
	Date         string  `json:"date"`
	Total        int     `json:"total"`
	WithVideo    int     `json:"with_video"`
	High         int     `json:"high"`
	Medium       int     `json:"medium"`
	Low          int     `json:"low"`
	Errors       int     `json:"errors"`
	NoVideo      int     `json:"no_video"`
	AccuracyRate float64 `json:"accuracy_rate"`
}

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var showDetail bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Score every assigned video against its artist name",
		Long: "Audit fetches each assigned video's public title and channel and\n" +
			"re-scores it against the artist, independent of the match log. Low\n" +
			"scores point at stale or wrong assignments worth a manual look.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			files, err := shows.LoadDir(cfg.Paths.DataDir, logger)
			if err != nil {
				return err
			}
			oembed, err := youtube.NewOEmbedClient(cfg.YouTube.OEmbedBaseURL, cfg.YouTube.ResultsBaseURL,
				&http.Client{Timeout: time.Duration(cfg.YouTube.RequestTimeout) * time.Second})
			if err != nil {
				return err
			}

			runCtx, cancel := signalContext()
			defer cancel()

			results, err := auditShows(runCtx, files, oembed)
			if err != nil {
				return err
			}
			stats := computeAuditStats(results)
			stats.Date = time.Now().Format("2006-01-02")

			printAudit(cmd, results, stats, showDetail)

			auditPath := filepath.Join(cfg.Paths.QADir, "audit-"+stats.Date+".json")
			if err := writeAudit(auditPath, results, stats); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Audit written to %s\n", auditPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDetail, "detail", false, "List every audited slot, not just the summary")
	return cmd
}

func auditShows(ctx context.Context, files []*shows.File, oembed *youtube.OEmbedClient) ([]auditResult, error) {
	var results []auditResult
	for _, file := range files {
		for _, show := range file.Shows {
			for _, slot := range show.Slots() {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				role := "headliner"
				if slot.IsOpener {
					role = "opener"
				}
				result := auditResult{
					Artist: slot.Artist,
					Venue:  show.Venue(),
					Role:   role,
				}

				videoID, _ := show.VideoID(slot.IDKey)
				if videoID == "" {
					result.Tier = "no_video"
					results = append(results, result)
					continue
				}
				result.VideoID = videoID

				info, err := oembed.Lookup(ctx, videoID)
				if err != nil {
					result.Tier = "error"
					result.Detail = err.Error()
					results = append(results, result)
					continue
				}

				match := scoring.Score(slot.Artist, info.Title, info.ChannelName)
				result.Score = match.Score
				result.Title = info.Title
				result.Detail = match.Explanation
				switch {
				case match.Score >= 70:
					result.Tier = "high"
				case match.Score >= 40:
					result.Tier = "medium"
				default:
					result.Tier = "low"
				}
				results = append(results, result)
			}
		}
	}
	return results, nil
}

func computeAuditStats(results []auditResult) auditStats {
	var stats auditStats
	for _, result := range results {
		stats.Total++
		switch result.Tier {
		case "high":
			stats.High++
		case "medium":
			stats.Medium++
		case "low":
			stats.Low++
		case "error":
			stats.Errors++
		case "no_video":
			stats.NoVideo++
		}
	}
	stats.WithVideo = stats.High + stats.Medium + stats.Low + stats.Errors
	if stats.WithVideo > 0 {
		stats.AccuracyRate = float64(stats.High) / float64(stats.WithVideo) * 100
	}
	return stats
}

func printAudit(cmd *cobra.Command, results []auditResult, stats auditStats, showDetail bool) {
	out := cmd.OutOrStdout()
	colorize := render.Colorize(out)
	for _, line := range render.SectionHeader("Match audit", colorize) {
		fmt.Fprintln(out, line)
	}

	if showDetail {
		rows := make([][]string, 0, len(results))
		for _, result := range results {
			score := ""
			if result.VideoID != "" && result.Tier != "error" {
				score = strconv.Itoa(result.Score)
			}
			rows = append(rows, []string{
				result.Artist, result.Venue, result.Role, result.Tier, score, result.Detail,
			})
		}
		fmt.Fprintln(out, render.Table(
			[]string{"Artist", "Venue", "Role", "Tier", "Score", "Detail"},
			rows,
			[]render.Alignment{render.Left, render.Left, render.Left, render.Left, render.Right, render.Left}))
	}

	fmt.Fprintln(out, render.StatusLine("Slots", render.Info, fmt.Sprintf("%d (%d with video)", stats.Total, stats.WithVideo), colorize))
	fmt.Fprintln(out, render.StatusLine("High confidence", render.OK, fmt.Sprintf("%d", stats.High), colorize))
	fmt.Fprintln(out, render.StatusLine("Medium", render.Info, fmt.Sprintf("%d", stats.Medium), colorize))
	lowKind := render.Info
	if stats.Low > 0 {
		lowKind = render.Warn
	}
	fmt.Fprintln(out, render.StatusLine("Low", lowKind, fmt.Sprintf("%d", stats.Low), colorize))
	if stats.Errors > 0 {
		fmt.Fprintln(out, render.StatusLine("Errors", render.Error, fmt.Sprintf("%d", stats.Errors), colorize))
	}
	fmt.Fprintln(out, render.StatusLine("Accuracy", render.Info, fmt.Sprintf("%.1f%%", stats.AccuracyRate), colorize))
}

func writeAudit(path string, results []auditResult, stats auditStats) error {
	payload := struct {
		Stats   auditStats    `json:"stats"`
		Results []auditResult `json:"results"`
	}{Stats: stats, Results: results}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode audit: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write audit: %w", err)
	}
	return nil
}
