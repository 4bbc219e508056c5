// Package enrich looks up scraped artists on Spotify and stores the
// resulting profile data for downstream verification.
//
// Enrichment answers two questions the verifier cannot answer from
// video metadata alone: does this artist exist as a real recording act,
// and how popular are they. Popularity feeds the tiered view caps and
// an exact or close name match serves as identity confirmation.
//
// Profiles are cached in a local SQLite database with a 30 day TTL so
// nightly runs only hit the Spotify API for new or stale artists.
package enrich
