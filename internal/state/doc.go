// Package state persists per-artist video lifecycle records and the
// append-only match log.
//
// The store is the pipeline's memory across nightly runs: which video
// each artist has, whether it survived verification, and why a
// rejected one was rejected. Records are never deleted; a rejection
// stays on file until a human override supersedes it. The match log
// records every scoring and verification decision as one JSON line,
// giving the accuracy audit and the search budget filter a durable
// trace to read back.
package state
