package matching

import "fmt"

// SearchDecision is the budget filter's verdict for one artist.
type SearchDecision struct {
	Search     bool
	ExistingID string
	Reason     string
}

// BudgetFilter holds the per-run snapshot the search decisions read
// from. It is built once at run start and never mutated during the run.
type BudgetFilter struct {
	// AcceptThreshold is the score at which an existing match is kept
	// without a fresh search.
	AcceptThreshold int

	// Existing maps artist name to the currently assigned video id.
	Existing map[string]string

	// Scores maps artist name to the most recent logged match score.
	Scores map[string]int

	// Rejected is the set of artists whose last verification rejected
	// their video. The caller builds this set, applying any retry
	// cooldown, so membership here always means "do not search".
	Rejected map[string]struct{}
}

// ShouldSearch applies the budget rules in order. Pure: no I/O, no
// mutation of the filter.
func (f *BudgetFilter) ShouldSearch(artist string) SearchDecision {
	if _, rejected := f.Rejected[artist]; rejected {
		return SearchDecision{
			Search: false,
			Reason: "previously rejected; waiting for manual override",
		}
	}

	existingID, assigned := f.Existing[artist]
	if !assigned || existingID == "" {
		return SearchDecision{Search: true, Reason: "no existing video"}
	}

	score, scored := f.Scores[artist]
	if !scored {
		// Unscored matches predate the log or came from a reused id.
		// Keep them; verification will reject them if they are wrong.
		return SearchDecision{
			Search:     false,
			ExistingID: existingID,
			Reason:     "existing match has no recorded score; keeping",
		}
	}

	if score >= f.AcceptThreshold {
		return SearchDecision{
			Search:     false,
			ExistingID: existingID,
			Reason:     fmt.Sprintf("existing match scored %d", score),
		}
	}
	return SearchDecision{
		Search:     true,
		ExistingID: existingID,
		Reason:     fmt.Sprintf("existing match scored %d, below accept threshold %d", score, f.AcceptThreshold),
	}
}
