package enrich

import (
	"context"
	"path/filepath"
	"testing"

	"soundcheck/internal/logging"
)

func newTestEnricher(t *testing.T, fake *fakeSpotify) (*Enricher, *fakeSpotify) {
	t.Helper()
	client := newTestClient(t, fake)
	cache, err := OpenCache(filepath.Join(t.TempDir(), "enrichment.db"), 30)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return NewEnricher(client, cache, logging.NewNop()), fake
}

func TestEnrichFetchesThenCaches(t *testing.T) {
	enricher, _ := newTestEnricher(t, &fakeSpotify{artists: []map[string]any{
		spotifyArtist("sp1", "Wednesday", 61, 120000, "shoegaze"),
	}})
	ctx := context.Background()

	record, fetched, err := enricher.Enrich(ctx, "Wednesday", false)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if !fetched || record.Profile.SpotifyID != "sp1" {
		t.Fatalf("first pass: fetched=%v record=%+v", fetched, record.Profile)
	}

	record, fetched, err = enricher.Enrich(ctx, "Wednesday", false)
	if err != nil {
		t.Fatalf("second Enrich: %v", err)
	}
	if fetched {
		t.Fatal("second lookup should come from cache")
	}
	if record.Profile.SpotifyID != "sp1" {
		t.Fatalf("cached record mismatch: %+v", record.Profile)
	}
}

func TestEnrichForceBypassesCache(t *testing.T) {
	enricher, fake := newTestEnricher(t, &fakeSpotify{artists: []map[string]any{
		spotifyArtist("sp1", "Pile", 50, 40000),
	}})
	ctx := context.Background()

	if _, _, err := enricher.Enrich(ctx, "Pile", false); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	fake.artists = []map[string]any{spotifyArtist("sp2", "Pile", 55, 41000)}

	record, fetched, err := enricher.Enrich(ctx, "Pile", true)
	if err != nil {
		t.Fatalf("forced Enrich: %v", err)
	}
	if !fetched || record.Profile.SpotifyID != "sp2" {
		t.Fatalf("force did not refetch: fetched=%v record=%+v", fetched, record.Profile)
	}
}

func TestEnrichCachesMisses(t *testing.T) {
	enricher, fake := newTestEnricher(t, &fakeSpotify{})
	ctx := context.Background()

	record, fetched, err := enricher.Enrich(ctx, "Open Mic Night", false)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if !fetched || record.Found() {
		t.Fatalf("miss should be fetched and empty: fetched=%v %+v", fetched, record.Profile)
	}
	if record.Profile.MatchConfidence != ConfidenceNoMatch {
		t.Fatalf("confidence = %q, want no_match", record.Profile.MatchConfidence)
	}

	searchesBefore := fake.searchRequests
	if _, fetched, err = enricher.Enrich(ctx, "Open Mic Night", false); err != nil || fetched {
		t.Fatalf("remembered miss should not refetch: fetched=%v err=%v", fetched, err)
	}
	if fake.searchRequests != searchesBefore {
		t.Fatal("cache miss entry did not stop API traffic")
	}
}

func TestEnrichAllDeduplicatesAndCounts(t *testing.T) {
	enricher, _ := newTestEnricher(t, &fakeSpotify{artists: []map[string]any{
		spotifyArtist("sp1", "Big Thief", 72, 900000),
	}})
	ctx := context.Background()

	stats, err := enricher.EnrichAll(ctx, []string{"Big Thief", "Big Thief", " Big Thief "}, false)
	if err != nil {
		t.Fatalf("EnrichAll: %v", err)
	}
	if stats.Fetched != 1 || stats.Cached != 0 {
		t.Fatalf("stats = %+v, want one fetch", stats)
	}
	if stats.Confirmed != 1 {
		t.Fatalf("exact match should count as confirmed: %+v", stats)
	}

	stats, err = enricher.EnrichAll(ctx, []string{"Big Thief"}, false)
	if err != nil {
		t.Fatalf("second EnrichAll: %v", err)
	}
	if stats.Fetched != 0 || stats.Cached != 1 {
		t.Fatalf("second pass stats = %+v, want cached", stats)
	}
}

func TestProfileReadsCacheOnly(t *testing.T) {
	enricher, fake := newTestEnricher(t, &fakeSpotify{artists: []map[string]any{
		spotifyArtist("sp1", "Mitski", 82, 2500000),
	}})
	ctx := context.Background()

	if _, found, err := enricher.Profile(ctx, "Mitski"); err != nil || found {
		t.Fatalf("Profile before enrich = found=%v err=%v", found, err)
	}
	if fake.searchRequests != 0 {
		t.Fatal("Profile must not hit the API")
	}

	if _, _, err := enricher.Enrich(ctx, "Mitski", false); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	profile, found, err := enricher.Profile(ctx, "Mitski")
	if err != nil || !found {
		t.Fatalf("Profile after enrich = found=%v err=%v", found, err)
	}
	if profile.Popularity != 82 {
		t.Fatalf("profile popularity = %d", profile.Popularity)
	}
}
