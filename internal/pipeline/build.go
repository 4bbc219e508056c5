package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"soundcheck/internal/config"
	"soundcheck/internal/enrich"
	"soundcheck/internal/matching"
	"soundcheck/internal/overrides"
	"soundcheck/internal/state"
	"soundcheck/internal/verify"
	"soundcheck/internal/youtube"
)

// Build wires a Runner to the live services the configuration
// describes. The returned cleanup closes the match log and the
// enrichment cache.
func Build(cfg *config.Config, logger *slog.Logger) (*Runner, func(), error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, err
	}

	httpClient := &http.Client{
		Timeout: time.Duration(cfg.YouTube.RequestTimeout) * time.Second,
	}

	api, err := youtube.New(cfg.YouTube.APIKey, cfg.YouTube.BaseURL,
		youtube.WithHTTPClient(httpClient),
		youtube.WithSearchLimit(cfg.YouTube.SearchLimit))
	if err != nil {
		return nil, nil, err
	}
	scraper, err := youtube.NewScrapeSearcher(cfg.YouTube.ResultsBaseURL, cfg.YouTube.SearchLimit, httpClient)
	if err != nil {
		return nil, nil, err
	}
	oembed, err := youtube.NewOEmbedClient(cfg.YouTube.OEmbedBaseURL, cfg.YouTube.ResultsBaseURL, httpClient)
	if err != nil {
		return nil, nil, err
	}

	catalog := overrides.NewCatalog(cfg.OverridesPath(), logger)
	matchLog, err := state.OpenLog(cfg.MatchLogPath())
	if err != nil {
		return nil, nil, err
	}

	runID := uuid.NewString()
	delay := time.Duration(cfg.Workflow.RequestDelayMS) * time.Millisecond
	throttle := func(ctx context.Context) { sleepContext(ctx, delay) }

	finder := matching.NewFinder(api, scraper, oembed, catalog, matchLog,
		matching.FinderConfig{
			CategoryID:      cfg.YouTube.MusicCategoryID,
			CategoryBonus:   cfg.Matching.CategoryBonus,
			AcceptThreshold: cfg.Matching.AcceptThreshold,
			FlagThreshold:   cfg.Matching.FlagThreshold,
		},
		logger,
		matching.WithRunID(runID),
		matching.WithThrottle(throttle))

	engine := verify.NewEngine(api, verify.Config{
		DefaultViewCap:    cfg.Verification.DefaultViewCap,
		TrustedViewCap:    cfg.Verification.TrustedViewCap,
		SubscriberFloor:   cfg.Verification.SubscriberFloor,
		MaxAgeYears:       cfg.Verification.MaxAgeYears,
		TrustedChannels:   cfg.Verification.TrustedChannels,
		PlaceholderImages: cfg.Verification.PlaceholderImages,
		MetadataRetries:   cfg.Workflow.MetadataRetries,
		RetryBackoff:      time.Duration(cfg.Workflow.RetryBackoffMS) * time.Millisecond,
	}, logger)

	// The cache opens regardless of credentials so reports can annotate
	// artists enriched on earlier runs.
	cache, err := enrich.OpenCache(cfg.EnrichmentCachePath(), cfg.Spotify.CacheTTLDays)
	if err != nil {
		matchLog.Close()
		return nil, nil, err
	}
	var spotify *enrich.SpotifyClient
	if cfg.SpotifyEnabled() {
		spotify, err = enrich.NewSpotifyClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
			cfg.Spotify.BaseURL, cfg.Spotify.TokenURL,
			enrich.WithSpotifyHTTPClient(httpClient))
		if err != nil {
			matchLog.Close()
			cache.Close()
			return nil, nil, err
		}
	}
	enricher := enrich.NewEnricher(spotify, cache, logger)

	runner := NewRunner(cfg, Deps{
		Finder:   finder,
		Verifier: engine,
		Enricher: enricher,
		Catalog:  catalog,
		RunID:    runID,
		Throttle: throttle,
	}, logger)

	cleanup := func() {
		matchLog.Close()
		cache.Close()
	}
	return runner, cleanup, nil
}
