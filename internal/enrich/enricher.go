package enrich

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"soundcheck/internal/logging"
	"soundcheck/internal/services"
)

// Enricher resolves artist names to cached Spotify profiles, hitting
// the API only for names the cache cannot answer.
type Enricher struct {
	client *SpotifyClient
	cache  *Cache
	logger *slog.Logger
}

// Stats summarizes an enrichment pass.
type Stats struct {
	Fetched   int
	Cached    int
	Confirmed int
	NotFound  int
}

// NewEnricher wires a Spotify client to the local cache.
func NewEnricher(client *SpotifyClient, cache *Cache, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enricher{
		client: client,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "enrich"),
	}
}

// Enrich returns the profile record for an artist. Fresh cache entries
// are returned as-is unless force is set; otherwise the artist is
// looked up on Spotify and the result, including a confirmed miss, is
// cached. The bool reports whether an API fetch happened.
func (e *Enricher) Enrich(ctx context.Context, artistName string, force bool) (Record, bool, error) {
	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return Record{}, false, services.Wrap(services.ErrValidation, "enrich", "enrich", "artist name must not be empty", nil)
	}

	if !force {
		record, hit, err := e.cache.Get(ctx, artistName)
		if err != nil {
			return Record{}, false, services.Wrap(services.ErrTransient, "enrich", "cache_get", "read enrichment cache", err)
		}
		if hit {
			return record, false, nil
		}
	}

	if e.client == nil {
		return Record{}, false, services.Wrap(services.ErrConfiguration, "enrich", "enrich",
			"spotify credentials not configured", nil)
	}

	profile, err := e.client.SearchArtist(ctx, artistName)
	record := Record{ArtistName: artistName}
	switch {
	case err == nil:
		record.Profile = *profile
		e.logger.Info("artist enriched",
			logging.String(logging.FieldArtist, artistName),
			logging.String("spotify_name", profile.SpotifyName),
			logging.Int("popularity", profile.Popularity),
			logging.Int64("followers", profile.Followers),
			logging.String("confidence", profile.MatchConfidence))
	case errors.Is(err, ErrNoMatch):
		record.Profile = ArtistProfile{MatchConfidence: ConfidenceNoMatch}
		e.logger.Info("no spotify match",
			logging.String(logging.FieldArtist, artistName))
	default:
		return Record{}, false, services.Wrap(services.ErrExternalService, "enrich", "spotify_search",
			"search spotify for artist", err)
	}

	if err := e.cache.Put(ctx, record); err != nil {
		return Record{}, false, services.Wrap(services.ErrTransient, "enrich", "cache_put", "write enrichment cache", err)
	}
	return record, true, nil
}

// EnrichAll enriches every artist in the list, deduplicated and in
// sorted order, and returns pass statistics. Individual lookup failures
// are logged and skipped so one flaky name does not abort the pass.
func (e *Enricher) EnrichAll(ctx context.Context, artistNames []string, force bool) (Stats, error) {
	unique := make(map[string]struct{}, len(artistNames))
	for _, name := range artistNames {
		name = strings.TrimSpace(name)
		if name != "" {
			unique[name] = struct{}{}
		}
	}
	ordered := make([]string, 0, len(unique))
	for name := range unique {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	var stats Stats
	for _, name := range ordered {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		record, fetched, err := e.Enrich(ctx, name, force)
		if err != nil {
			if !services.IsRetryable(err) {
				return stats, err
			}
			e.logger.Warn("enrichment lookup failed",
				logging.String(logging.FieldArtist, name),
				logging.Error(err))
			continue
		}
		if !fetched {
			stats.Cached++
			continue
		}
		stats.Fetched++
		switch {
		case !record.Found():
			stats.NotFound++
		case record.Profile.MatchConfidence == ConfidenceExact || record.Profile.MatchConfidence == ConfidenceClose:
			stats.Confirmed++
		}
	}
	return stats, nil
}

// All returns every cached record, for report annotations.
func (e *Enricher) All(ctx context.Context) ([]Record, error) {
	return e.cache.All(ctx)
}

// Profile returns the fresh cached profile for an artist without
// triggering an API lookup. The verifier uses this to read popularity
// and identity confidence for artists enriched earlier in the run.
func (e *Enricher) Profile(ctx context.Context, artistName string) (ArtistProfile, bool, error) {
	record, hit, err := e.cache.Get(ctx, artistName)
	if err != nil || !hit {
		return ArtistProfile{}, false, err
	}
	return record.Profile, record.Found(), nil
}
