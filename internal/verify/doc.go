// Package verify re-checks every assigned video against a stricter set
// of signals than the original match search used.
//
// The engine runs nightly over videos that already passed matching. A
// video passes only when every check does: poster image, metadata
// availability, view-count ceiling, channel identity, upload age, and
// identity confirmation against the enrichment profile. Trusted label
// channels and platform Topic channels earn documented exemptions. Any
// single failure rejects, and a rejection is terminal until a human
// override says otherwise.
package verify
