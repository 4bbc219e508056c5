// Package shows reads and writes the per-venue show documents produced
// by the scrapers.
//
// The pipeline does not own these files. It reads artist names and
// writes exactly two fields, youtube_id and opener_youtube_id, so shows
// are kept as raw JSON objects and files are rewritten whole. Fields
// the pipeline has no model for pass through untouched.
package shows
