package youtube

import (
	"errors"
	"time"
)

var (
	// ErrQuotaExceeded indicates the Data API rejected the call for quota or
	// authorization reasons; callers fall back to the scrape searcher.
	ErrQuotaExceeded = errors.New("youtube quota exceeded")
	// ErrNotFound indicates the video or channel no longer exists.
	ErrNotFound = errors.New("youtube resource not found")
	// ErrUnavailable indicates a transient upstream failure worth retrying.
	ErrUnavailable = errors.New("youtube unavailable")
)

// Candidate is one search result considered for a match. Scrape results
// carry only the video id.
type Candidate struct {
	ID          string
	Title       string
	ChannelName string
	ChannelID   string
}

// VideoMetadata is the per-video payload used by verification.
type VideoMetadata struct {
	ID          string
	Title       string
	ChannelName string
	ChannelID   string
	ViewCount   int64
	Published   time.Time
}

// ChannelMetadata is the per-channel payload used by verification.
type ChannelMetadata struct {
	ID              string
	Name            string
	SubscriberCount int64
	VideoCount      int64
}
