package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeSpotify struct {
	tokenRequests  int
	searchRequests int
	artists        []map[string]any
}

func (f *fakeSpotify) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests++
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchRequests++
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"artists": map[string]any{"items": f.artists},
		})
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeSpotify) *SpotifyClient {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	client, err := NewSpotifyClient("id", "secret", server.URL, server.URL+"/token")
	if err != nil {
		t.Fatalf("NewSpotifyClient: %v", err)
	}
	return client
}

func spotifyArtist(id, name string, popularity int, followers int64, genres ...string) map[string]any {
	if genres == nil {
		genres = []string{}
	}
	return map[string]any{
		"id":         id,
		"name":       name,
		"popularity": popularity,
		"genres":     genres,
		"followers":  map[string]any{"total": followers},
	}
}

func TestSearchArtistExactMatch(t *testing.T) {
	fake := &fakeSpotify{artists: []map[string]any{
		spotifyArtist("a1", "Heated", 42, 12000, "indie rock"),
		spotifyArtist("a2", "Heated Pool", 60, 90000),
	}}
	client := newTestClient(t, fake)

	profile, err := client.SearchArtist(context.Background(), "Heated")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if profile.SpotifyID != "a1" || profile.SpotifyName != "Heated" {
		t.Fatalf("wrong pick: %+v", profile)
	}
	if profile.MatchConfidence != ConfidenceExact {
		t.Fatalf("confidence = %q, want exact", profile.MatchConfidence)
	}
	if profile.Popularity != 42 || profile.Followers != 12000 {
		t.Fatalf("profile fields not carried: %+v", profile)
	}
}

func TestSearchArtistPopularityBreaksNearTies(t *testing.T) {
	// Both candidates are exact-name matches after normalization; the
	// popularity nudge should pick the bigger act.
	fake := &fakeSpotify{artists: []map[string]any{
		spotifyArtist("small", "The National", 20, 500),
		spotifyArtist("big", "The National", 85, 2000000),
	}}
	client := newTestClient(t, fake)

	profile, err := client.SearchArtist(context.Background(), "The National")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if profile.SpotifyID != "big" {
		t.Fatalf("picked %q, want the more popular act", profile.SpotifyID)
	}
}

func TestSearchArtistMultiWordFloor(t *testing.T) {
	// A three word listing must not collapse onto a one word artist.
	fake := &fakeSpotify{artists: []map[string]any{
		spotifyArtist("c1", "Common", 75, 3000000),
	}}
	client := newTestClient(t, fake)

	_, err := client.SearchArtist(context.Background(), "Common Woman Cabaret")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestSearchArtistNoResults(t *testing.T) {
	fake := &fakeSpotify{}
	client := newTestClient(t, fake)

	_, err := client.SearchArtist(context.Background(), "Totally Unknown Act")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestTokenReusedAcrossSearches(t *testing.T) {
	fake := &fakeSpotify{artists: []map[string]any{
		spotifyArtist("a1", "Pile", 50, 40000),
	}}
	client := newTestClient(t, fake)

	for i := 0; i < 3; i++ {
		if _, err := client.SearchArtist(context.Background(), "Pile"); err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
	}
	if fake.tokenRequests != 1 {
		t.Fatalf("token fetched %d times, want 1", fake.tokenRequests)
	}
}
