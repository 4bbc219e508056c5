package youtube_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"soundcheck/internal/youtube"
)

func TestOEmbedLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Fatalf("missing format param: %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"title":"Not (Official Video)","author_name":"Big Thief"}`))
	}))
	defer server.Close()

	client, err := youtube.NewOEmbedClient(server.URL, "https://www.youtube.com", server.Client())
	if err != nil {
		t.Fatalf("NewOEmbedClient returned error: %v", err)
	}

	info, err := client.Lookup(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if info.Title != "Not (Official Video)" || info.ChannelName != "Big Thief" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestOEmbedMissingVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client, err := youtube.NewOEmbedClient(server.URL, "https://www.youtube.com", server.Client())
	if err != nil {
		t.Fatalf("NewOEmbedClient returned error: %v", err)
	}

	if _, err := client.Lookup(context.Background(), "gone4567890"); !errors.Is(err, youtube.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
