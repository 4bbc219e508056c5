package report

import (
	"fmt"

	"soundcheck/internal/enrich"
	"soundcheck/internal/shows"
	"soundcheck/internal/state"
)

// Change records one artist whose video state changed during a run.
type Change struct {
	Artist  string
	Venue   string
	Date    string
	VideoID string
	// Detail carries the confidence summary for verifications and the
	// rejection reason for rejections.
	Detail string
	// Recovered marks a verification for an artist whose previous
	// record was a rejection.
	Recovered bool
}

// Delta is the outcome of one run, in the order changes happened.
type Delta struct {
	Verified        []Change
	Rejected        []Change
	AlreadyVerified int
	Overrides       int
}

// RecoveredCount reports how many verifications replaced an earlier
// rejection.
func (d Delta) RecoveredCount() int {
	n := 0
	for _, c := range d.Verified {
		if c.Recovered {
			n++
		}
	}
	return n
}

// Profiles indexes enrichment records by artist name for report
// annotations.
type Profiles map[string]enrich.Record

// NewProfiles builds the index from a cache dump.
func NewProfiles(records []enrich.Record) Profiles {
	p := make(Profiles, len(records))
	for _, rec := range records {
		p[rec.ArtistName] = rec
	}
	return p
}

// Indicator returns the compact annotation printed next to an artist:
// "✓ 44" for an exact match with popularity 44, "~ 8" for a close or
// partial match, "—" when the artist was looked up and not found, and
// an empty string when the artist was never looked up.
func (p Profiles) Indicator(artist string) string {
	rec, ok := p[artist]
	if !ok {
		return ""
	}
	switch rec.Profile.MatchConfidence {
	case enrich.ConfidenceExact:
		return fmt.Sprintf("✓ %d", rec.Profile.Popularity)
	case enrich.ConfidenceClose, enrich.ConfidencePartial:
		return fmt.Sprintf("~ %d", rec.Profile.Popularity)
	case enrich.ConfidenceNoMatch:
		return "—"
	}
	return ""
}

func (p Profiles) matchColumns(artist string) (confidence, popularity string) {
	rec, ok := p[artist]
	if !ok {
		return "", ""
	}
	confidence = rec.Profile.MatchConfidence
	if rec.Found() {
		popularity = fmt.Sprintf("%d", rec.Profile.Popularity)
	}
	return confidence, popularity
}

// QueueRow is one show slot with no assigned video, annotated with why.
type QueueRow struct {
	Artist string
	Venue  string
	Date   string
	Status string
}

// NoPreviewQueue lists every show slot without an assigned video and
// explains each absence from the state store.
func NoPreviewQueue(files []*shows.File, states *state.Store) []QueueRow {
	var queue []QueueRow
	for _, file := range files {
		for _, show := range file.Shows {
			for _, slot := range show.Slots() {
				if id, _ := show.VideoID(slot.IDKey); id != "" {
					continue
				}
				queue = append(queue, QueueRow{
					Artist: slot.Artist,
					Venue:  show.Venue(),
					Date:   show.Date(),
					Status: queueStatus(slot.Artist, states),
				})
			}
		}
	}
	return queue
}

func queueStatus(artist string, states *state.Store) string {
	record, found := states.Get(artist)
	if !found {
		return "No video assigned"
	}
	switch record.Status {
	case state.StatusRejected:
		reason := record.Reason
		if reason == "" {
			reason = "unknown"
		}
		return "Rejected: " + reason
	case state.StatusOverrideNull:
		return "Override: no video"
	case state.StatusVerified:
		// Verified elsewhere but this show slot never got a video.
		return "No video from scraper"
	}
	return "No video assigned"
}
