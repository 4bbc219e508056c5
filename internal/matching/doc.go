// Package matching decides which video, if any, represents an artist.
//
// Two collaborators live here. The Finder runs the expensive path:
// override table first, then title cleaning, then an ordered list of
// search strategies, scoring every candidate and classifying the best
// one as accept, flag, or skip. The budget filter runs before any of
// that, deciding from prior state whether a fresh search is worth an
// external call at all. Every Finder decision is appended to the match
// log; neither collaborator touches the video state store.
package matching
