package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"soundcheck/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Load(filepath.Join(t.TempDir(), "video_states.json"), logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store
}

func TestStoreLifecycleTransitions(t *testing.T) {
	store := newTestStore(t)

	if _, found := store.Get("Wednesday"); found {
		t.Fatal("fresh store should have no records")
	}

	store.SetVerified("Wednesday", "abc123def45", "channel match", &Metadata{
		ChannelName:  "Wednesday",
		ChannelMatch: true,
		ViewCount:    120000,
	})
	record, found := store.Get("Wednesday")
	if !found || record.Status != StatusVerified {
		t.Fatalf("record = %+v found=%v", record, found)
	}
	if record.VerifiedDate.IsZero() || record.VideoID != "abc123def45" {
		t.Fatalf("verified record incomplete: %+v", record)
	}

	store.SetRejected("Wednesday", "abc123def45", "view count 80,000,000 exceeds cap", nil)
	record, _ = store.Get("Wednesday")
	if record.Status != StatusRejected || record.Reason == "" {
		t.Fatalf("rejection not recorded: %+v", record)
	}
	if record.RejectedDate.IsZero() {
		t.Fatal("rejection date not stamped")
	}
}

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa", "video_states.json")
	store, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	store.SetVerified("Big Thief", "dQw4w9WgXcQ", "Topic channel", &Metadata{IsTopic: true})
	store.SetRejected("Heated", "zzz999yyy88", "metadata unavailable", nil)
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded %d records, want 2", reloaded.Len())
	}
	record, found := reloaded.Get("Big Thief")
	if !found || record.Status != StatusVerified || record.Metadata == nil || !record.Metadata.IsTopic {
		t.Fatalf("round trip lost fields: %+v", record)
	}
	if _, rejected := reloaded.Rejected()["Heated"]; !rejected {
		t.Fatal("rejection not in rejected set after reload")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video_states.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path, logging.NewNop()); err == nil {
		t.Fatal("malformed state file must not load as empty")
	}
}

func TestMarkOverrideNullNeverOverwrites(t *testing.T) {
	store := newTestStore(t)

	if !store.MarkOverrideNull("Trivia Kings") {
		t.Fatal("expected override_null record for new artist")
	}
	record, _ := store.Get("Trivia Kings")
	if record.Status != StatusOverrideNull {
		t.Fatalf("status = %q", record.Status)
	}

	store.SetRejected("Heated", "abc123def45", "channel mismatch", nil)
	if store.MarkOverrideNull("Heated") {
		t.Fatal("override_null must not replace an existing record")
	}
	record, _ = store.Get("Heated")
	if record.Status != StatusRejected {
		t.Fatalf("existing record overwritten: %+v", record)
	}
}

func TestRejectedSince(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	store.SetRejected("Pile", "abc123def45", "too old", nil)

	if !store.RejectedSince("Pile", time.Time{}) {
		t.Fatal("zero cutoff should match any rejection")
	}
	if !store.RejectedSince("Pile", base.Add(-24*time.Hour)) {
		t.Fatal("rejection newer than cutoff should match")
	}
	if store.RejectedSince("Pile", base.Add(24*time.Hour)) {
		t.Fatal("rejection older than cutoff should not match")
	}
	if store.RejectedSince("Wednesday", time.Time{}) {
		t.Fatal("unknown artist is not rejected")
	}

	store.SetVerified("Pile", "abc123def45", "recovered", nil)
	if store.RejectedSince("Pile", time.Time{}) {
		t.Fatal("verified artist is not rejected")
	}
}

func TestArtistsSorted(t *testing.T) {
	store := newTestStore(t)
	store.SetVerified("Wednesday", "a", "", nil)
	store.SetVerified("Big Thief", "b", "", nil)
	store.MarkOverrideNull("Mitski")

	artists := store.Artists()
	want := []string{"Big Thief", "Mitski", "Wednesday"}
	if len(artists) != len(want) {
		t.Fatalf("got %v", artists)
	}
	for i := range want {
		if artists[i] != want[i] {
			t.Fatalf("order mismatch: %v", artists)
		}
	}
}
