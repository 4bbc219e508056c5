// Package report renders the human-facing outputs of a pipeline run.
//
// Three views exist: the daily delta (what changed tonight, with
// recovered artists called out separately from first-time
// verifications), the inventory snapshot (where every tracked artist
// stands), and the accuracy trend read from the dated history file.
// The daily report also exports as CSV for spreadsheet triage. All
// rendering is pure; callers pass in snapshots of state, shows, and
// enrichment profiles.
package report
