package enrich

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttlDays int) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache", "enrichment.db"), ttlDays)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestCachePutGetRoundTrip(t *testing.T) {
	cache := newTestCache(t, 30)
	ctx := context.Background()

	want := Record{
		ArtistName: "Japanese Breakfast",
		Profile: ArtistProfile{
			SpotifyID:       "sp123",
			SpotifyName:     "Japanese Breakfast",
			Popularity:      68,
			Followers:       850000,
			Genres:          []string{"indie pop", "philly indie"},
			MatchConfidence: ConfidenceExact,
			MatchScore:      1.068,
		},
	}
	if err := cache.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, hit, err := cache.Get(ctx, "Japanese Breakfast")
	if err != nil || !hit {
		t.Fatalf("Get = hit=%v err=%v", hit, err)
	}
	if got.Profile.SpotifyID != want.Profile.SpotifyID ||
		got.Profile.Popularity != want.Profile.Popularity ||
		got.Profile.Followers != want.Profile.Followers ||
		got.Profile.MatchConfidence != want.Profile.MatchConfidence {
		t.Fatalf("round trip mismatch: %+v", got.Profile)
	}
	if len(got.Profile.Genres) != 2 || got.Profile.Genres[0] != "indie pop" {
		t.Fatalf("genres mismatch: %v", got.Profile.Genres)
	}
	if got.FetchedAt.IsZero() {
		t.Fatal("FetchedAt not stamped")
	}
}

func TestCacheMissForUnknownArtist(t *testing.T) {
	cache := newTestCache(t, 30)
	if _, hit, err := cache.Get(context.Background(), "Nobody"); err != nil || hit {
		t.Fatalf("Get = hit=%v err=%v, want miss", hit, err)
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	cache := newTestCache(t, 30)
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }
	if err := cache.Put(ctx, Record{
		ArtistName: "Pile",
		Profile:    ArtistProfile{SpotifyID: "sp1", SpotifyName: "Pile", MatchConfidence: ConfidenceExact},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	cache.now = func() time.Time { return now.Add(29 * 24 * time.Hour) }
	if _, hit, _ := cache.Get(ctx, "Pile"); !hit {
		t.Fatal("entry expired before TTL")
	}

	cache.now = func() time.Time { return now.Add(31 * 24 * time.Hour) }
	if _, hit, _ := cache.Get(ctx, "Pile"); hit {
		t.Fatal("entry survived past TTL")
	}
}

func TestCachePutReplacesExisting(t *testing.T) {
	cache := newTestCache(t, 30)
	ctx := context.Background()

	if err := cache.Put(ctx, Record{
		ArtistName: "Mitski",
		Profile:    ArtistProfile{SpotifyID: "old", Popularity: 10, MatchConfidence: ConfidencePartial},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Put(ctx, Record{
		ArtistName: "Mitski",
		Profile:    ArtistProfile{SpotifyID: "new", Popularity: 80, MatchConfidence: ConfidenceExact},
	}); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, hit, err := cache.Get(ctx, "Mitski")
	if err != nil || !hit {
		t.Fatalf("Get = hit=%v err=%v", hit, err)
	}
	if got.Profile.SpotifyID != "new" || got.Profile.Popularity != 80 {
		t.Fatalf("replacement not applied: %+v", got.Profile)
	}
}

func TestCacheRemembersMisses(t *testing.T) {
	cache := newTestCache(t, 30)
	ctx := context.Background()

	if err := cache.Put(ctx, Record{
		ArtistName: "Trivia Night Crew",
		Profile:    ArtistProfile{MatchConfidence: ConfidenceNoMatch},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, hit, err := cache.Get(ctx, "Trivia Night Crew")
	if err != nil || !hit {
		t.Fatalf("Get = hit=%v err=%v", hit, err)
	}
	if got.Found() {
		t.Fatal("remembered miss should not report a profile")
	}
}

func TestCacheAllOrdersByName(t *testing.T) {
	cache := newTestCache(t, 30)
	ctx := context.Background()

	for _, name := range []string{"Wednesday", "Big Thief", "Mitski"} {
		if err := cache.Put(ctx, Record{
			ArtistName: name,
			Profile:    ArtistProfile{SpotifyID: "sp-" + name, MatchConfidence: ConfidenceExact},
		}); err != nil {
			t.Fatalf("Put %s: %v", name, err)
		}
	}

	records, err := cache.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	want := []string{"Big Thief", "Mitski", "Wednesday"}
	for i, record := range records {
		if record.ArtistName != want[i] {
			t.Fatalf("order mismatch at %d: %q", i, record.ArtistName)
		}
	}
}
