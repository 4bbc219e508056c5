// Package youtube implements the search and metadata capabilities behind the
// matching pipeline: the structured Data API client, an unauthenticated
// results-page scraper used when API quota runs out, and the key-less oEmbed
// lookup the offline audit relies on.
package youtube
