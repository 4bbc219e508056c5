package shows

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundcheck/internal/logging"
)

func writeShowFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFileWrappedAndBareShapes(t *testing.T) {
	dir := t.TempDir()

	wrapped := writeShowFile(t, dir, "shows-catscradle.json", `{
		"venue": "Cat's Cradle",
		"shows": [
			{"artist": "Wednesday", "date": "2026-09-12", "youtube_id": "abc123def45"},
			{"artist": "Pile", "opener": "Heated", "youtube_id": null}
		]
	}`)
	file, err := LoadFile(wrapped)
	if err != nil {
		t.Fatalf("LoadFile wrapped: %v", err)
	}
	if file.Venue != "catscradle" || len(file.Shows) != 2 {
		t.Fatalf("file = venue=%q shows=%d", file.Venue, len(file.Shows))
	}
	if id, assigned := file.Shows[0].VideoID(KeyVideoID); !assigned || id != "abc123def45" {
		t.Fatalf("VideoID = %q, %v", id, assigned)
	}
	if _, assigned := file.Shows[1].VideoID(KeyVideoID); assigned {
		t.Fatal("explicit null must read as unassigned")
	}

	bare := writeShowFile(t, dir, "shows-local506.json", `[
		{"artist": "Big Thief"}
	]`)
	file, err = LoadFile(bare)
	if err != nil {
		t.Fatalf("LoadFile bare: %v", err)
	}
	if len(file.Shows) != 1 || file.Shows[0].Artist() != "Big Thief" {
		t.Fatalf("bare array not parsed: %+v", file.Shows)
	}
}

func TestLoadDirLexicalOrderAndTolerance(t *testing.T) {
	dir := t.TempDir()
	writeShowFile(t, dir, "shows-motorco.json", `{"shows": []}`)
	writeShowFile(t, dir, "shows-catscradle.json", `{"shows": []}`)
	writeShowFile(t, dir, "shows-broken.json", `{not json`)
	writeShowFile(t, dir, "unrelated.json", `{}`)

	files, err := LoadDir(dir, logging.NewNop())
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want broken skipped and unrelated ignored", len(files))
	}
	if files[0].Venue != "catscradle" || files[1].Venue != "motorco" {
		t.Fatalf("order = %s, %s", files[0].Venue, files[1].Venue)
	}
}

func TestSavePreservesForeignFields(t *testing.T) {
	dir := t.TempDir()
	path := writeShowFile(t, dir, "shows-pinhook.json", `{
		"scraped_at": "2026-08-29T03:00:00Z",
		"shows": [
			{"artist": "Mitski", "ticket_url": "https://example.com/t/1", "price": "$25", "youtube_id": "old123old45"}
		]
	}`)

	file, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	file.Shows[0].ClearVideoID(KeyVideoID)
	file.MarkDirty()
	if err := file.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse saved file: %v", err)
	}
	if doc["scraped_at"] != "2026-08-29T03:00:00Z" {
		t.Fatal("document-level field lost on rewrite")
	}
	show := doc["shows"].([]any)[0].(map[string]any)
	if show["ticket_url"] != "https://example.com/t/1" || show["price"] != "$25" {
		t.Fatalf("show fields lost on rewrite: %v", show)
	}
	if id, present := show["youtube_id"]; !present || id != nil {
		t.Fatalf("cleared id should persist as explicit null, got %v (present=%v)", id, present)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Fatal("saved file missing trailing newline")
	}
}

func TestSaveSkipsCleanFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeShowFile(t, dir, "shows-motorco.json", `{"shows": [{"artist": "Pile"}]}`)
	before, _ := os.Stat(path)

	file, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := file.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	after, _ := os.Stat(path)
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("clean file was rewritten")
	}
}

func TestSlots(t *testing.T) {
	show := Show{"artist": "Wednesday", "opener": "Heated"}
	slots := show.Slots()
	if len(slots) != 2 {
		t.Fatalf("got %d slots", len(slots))
	}
	if slots[0].Artist != "Wednesday" || slots[0].IsOpener || slots[0].IDKey != KeyVideoID {
		t.Fatalf("headliner slot = %+v", slots[0])
	}
	if slots[1].Artist != "Heated" || !slots[1].IsOpener || slots[1].IDKey != KeyOpenerVideoID {
		t.Fatalf("opener slot = %+v", slots[1])
	}

	solo := Show{"artist": "Pile"}
	if len(solo.Slots()) != 1 {
		t.Fatal("solo bill should have one slot")
	}
	if len((Show{}).Slots()) != 0 {
		t.Fatal("empty record should have no slots")
	}
}

func TestShowFieldDefaults(t *testing.T) {
	show := Show{}
	if show.Venue() != "Unknown" || show.Date() != "TBD" {
		t.Fatalf("defaults = %q, %q", show.Venue(), show.Date())
	}
	if show.Expired() {
		t.Fatal("missing expired flag should read false")
	}
}
