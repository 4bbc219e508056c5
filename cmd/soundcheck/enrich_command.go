package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"soundcheck/internal/config"
	"soundcheck/internal/enrich"
	"soundcheck/internal/render"
	"soundcheck/internal/shows"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var artists []string
	var force bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Resolve scraped artist names against Spotify",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			names := artists
			if len(names) == 0 {
				if names, err = scrapedArtists(cfg, ctx); err != nil {
					return err
				}
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No artists to enrich.")
				return nil
			}

			cache, err := enrich.OpenCache(cfg.EnrichmentCachePath(), cfg.Spotify.CacheTTLDays)
			if err != nil {
				return err
			}
			defer cache.Close()

			runCtx, cancel := signalContext()
			defer cancel()

			if dryRun {
				return printEnrichPlan(runCtx, cmd, cache, names, force)
			}

			var client *enrich.SpotifyClient
			if cfg.SpotifyEnabled() {
				client, err = enrich.NewSpotifyClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
					cfg.Spotify.BaseURL, cfg.Spotify.TokenURL)
				if err != nil {
					return err
				}
			}
			enricher := enrich.NewEnricher(client, cache, logger)

			stats, err := enricher.EnrichAll(runCtx, names, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Enriched %d artists: %d fetched, %d cached, %d confirmed, %d not found\n",
				len(names), stats.Fetched, stats.Cached, stats.Confirmed, stats.NotFound)
			return printCachedProfiles(runCtx, cmd, cache, names)
		},
	}

	cmd.Flags().StringArrayVar(&artists, "artist", nil, "Artist to enrich (repeatable; default: all scraped artists)")
	cmd.Flags().BoolVar(&force, "force", false, "Refresh even fresh cache entries")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the lookups that would happen without calling Spotify")
	return cmd
}

func scrapedArtists(cfg *config.Config, ctx *commandContext) ([]string, error) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	files, err := shows.LoadDir(cfg.Paths.DataDir, logger)
	if err != nil {
		return nil, err
	}
	unique := make(map[string]struct{})
	for _, file := range files {
		for _, show := range file.Shows {
			for _, slot := range show.Slots() {
				unique[slot.Artist] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(unique))
	for name := range unique {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func printEnrichPlan(ctx context.Context, cmd *cobra.Command, cache *enrich.Cache, names []string, force bool) error {
	out := cmd.OutOrStdout()
	pending := 0
	for _, name := range names {
		_, hit, err := cache.Get(ctx, name)
		if err != nil {
			return err
		}
		if hit && !force {
			continue
		}
		fmt.Fprintf(out, "  would fetch: %s\n", name)
		pending++
	}
	fmt.Fprintf(out, "%d of %d artists need a lookup\n", pending, len(names))
	return nil
}

func printCachedProfiles(ctx context.Context, cmd *cobra.Command, cache *enrich.Cache, names []string) error {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	records, err := cache.All(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(names))
	for _, record := range records {
		if _, ok := wanted[record.ArtistName]; !ok {
			continue
		}
		popularity := ""
		if record.Found() {
			popularity = strconv.Itoa(record.Profile.Popularity)
		}
		rows = append(rows, []string{
			record.ArtistName,
			record.Profile.SpotifyName,
			record.Profile.MatchConfidence,
			popularity,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Table(
		[]string{"Artist", "Spotify Name", "Confidence", "Popularity"},
		rows,
		[]render.Alignment{render.Left, render.Left, render.Left, render.Right}))
	return nil
}
