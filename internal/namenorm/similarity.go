package namenorm

import "strings"

// Similarity scores how alike two names are on a 0–1 scale, checking exact
// match, containment, and token overlap. Used to pick the best enrichment
// candidate for a scraped artist name.
func Similarity(a, b string) float64 {
	fa, fb := Flatten(a), Flatten(b)
	if fa == "" || fb == "" {
		return 0
	}
	if fa == fb {
		return 1
	}

	// Containment counts only when the lengths are comparable, otherwise a
	// short name buried in a long one is a weak signal.
	if strings.Contains(fa, fb) || strings.Contains(fb, fa) {
		shorter, longer := len(fa), len(fb)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		if float64(shorter)/float64(longer) >= 0.5 {
			return 0.9
		}
		return 0.3
	}

	tokensA := fieldSet(a)
	tokensB := fieldSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	overlap := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			overlap++
		}
	}
	total := len(tokensA)
	if len(tokensB) > total {
		total = len(tokensB)
	}
	return float64(overlap) / float64(total)
}

func fieldSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		set[token] = struct{}{}
	}
	return set
}
