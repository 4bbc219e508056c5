// Package pipeline orchestrates a nightly run: enrich scraped artist
// names, match each show slot to a video, verify every assigned video,
// and write the updated state, reports, and accuracy snapshot.
//
// A run holds an exclusive file lock for its whole duration. All state
// is loaded once up front and written back once at the end; individual
// artist failures are logged and skipped so one bad lookup cannot
// abort the night.
package pipeline
