package shows

import (
	"strings"
)

// Show record keys the pipeline reads or writes.
const (
	KeyArtist        = "artist"
	KeyOpener        = "opener"
	KeyVenue         = "venue"
	KeyDate          = "date"
	KeyImage         = "image"
	KeyExpired       = "expired"
	KeyVideoID       = "youtube_id"
	KeyOpenerVideoID = "opener_youtube_id"
)

// Show is one listing as scraped, kept as the raw JSON object so
// unknown fields survive a rewrite.
type Show map[string]any

func (s Show) stringField(key string) string {
	value, _ := s[key].(string)
	return strings.TrimSpace(value)
}

// Artist returns the headliner name.
func (s Show) Artist() string { return s.stringField(KeyArtist) }

// Opener returns the opening act name, empty when the bill has none.
func (s Show) Opener() string { return s.stringField(KeyOpener) }

// Venue returns the venue name, defaulting to "Unknown".
func (s Show) Venue() string {
	if venue := s.stringField(KeyVenue); venue != "" {
		return venue
	}
	return "Unknown"
}

// Date returns the show date string, defaulting to "TBD".
func (s Show) Date() string {
	if date := s.stringField(KeyDate); date != "" {
		return date
	}
	return "TBD"
}

// Image returns the poster image URL.
func (s Show) Image() string { return s.stringField(KeyImage) }

// Expired reports whether the scraper marked the show as past.
func (s Show) Expired() bool {
	expired, _ := s[KeyExpired].(bool)
	return expired
}

// VideoID returns the assigned video id for the given key and whether
// one is assigned. An explicit null counts as unassigned.
func (s Show) VideoID(key string) (string, bool) {
	value, ok := s[key]
	if !ok || value == nil {
		return "", false
	}
	id, _ := value.(string)
	id = strings.TrimSpace(id)
	return id, id != ""
}

// SetVideoID assigns a video id.
func (s Show) SetVideoID(key, id string) {
	s[key] = id
}

// ClearVideoID writes an explicit null, re-entering the show in the
// no-preview queue without deleting the field.
func (s Show) ClearVideoID(key string) {
	s[key] = nil
}

// Slot is one artist position on a bill together with the show field
// that holds its video assignment.
type Slot struct {
	Artist   string
	IsOpener bool
	IDKey    string
}

// Slots returns the headliner and, when present, the opener slot.
func (s Show) Slots() []Slot {
	var slots []Slot
	if artist := s.Artist(); artist != "" {
		slots = append(slots, Slot{Artist: artist, IDKey: KeyVideoID})
	}
	if opener := s.Opener(); opener != "" {
		slots = append(slots, Slot{Artist: opener, IsOpener: true, IDKey: KeyOpenerVideoID})
	}
	return slots
}
