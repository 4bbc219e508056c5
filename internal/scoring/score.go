package scoring

import (
	"fmt"
	"sort"
	"strings"

	"soundcheck/internal/namenorm"
)

// Tier buckets a score into the three-way decision the finder acts on.
type Tier string

const (
	TierAccept Tier = "accept"
	TierFlag   Tier = "flag"
	TierSkip   Tier = "skip"

	// TierOverride marks decisions taken from the manual override table
	// rather than a scored search.
	TierOverride Tier = "override"

	acceptThreshold = 70
	flagThreshold   = 40
)

// Match is a scored comparison between an artist name and video metadata.
type Match struct {
	Score       int
	Explanation string
}

// Tier returns the decision bucket for the match score.
func (m Match) Tier() Tier {
	return TierFor(m.Score)
}

// TierFor maps a 0–100 score to accept (>= 70), flag (40–69), or skip (< 40).
func TierFor(score int) Tier {
	switch {
	case score >= acceptThreshold:
		return TierAccept
	case score >= flagThreshold:
		return TierFlag
	default:
		return TierSkip
	}
}

// Score rates a candidate video against an artist name on a 0–100 scale.
// Channel identity is the strongest signal; single-word artist names are
// held to a stricter standard on title-only matches because common words
// collide with unrelated songs ("Heated" vs. a Beyoncé track).
//
// Pure: identical inputs always produce the identical Match.
func Score(artistName, videoTitle, channelName string) Match {
	if artistName == "" || (videoTitle == "" && channelName == "") {
		return Match{Score: 0, Explanation: "no data to compare"}
	}

	artistFlat := namenorm.Flatten(artistName)
	titleFlat := namenorm.Flatten(videoTitle)
	channelFlat := namenorm.Flatten(channelName)

	if artistFlat != "" && channelFlat != "" && strings.Contains(channelFlat, artistFlat) {
		return Match{Score: 95, Explanation: "artist name found in channel name"}
	}
	if channelFlat != "" && len(channelFlat) >= 3 && strings.Contains(artistFlat, channelFlat) {
		return Match{Score: 85, Explanation: "channel name found in artist name"}
	}

	artistWords := namenorm.WordSet(artistName)
	titleWords := namenorm.WordSet(videoTitle)
	channelWords := namenorm.WordSet(channelName)

	if len(artistWords) == 0 {
		return Match{Score: 0, Explanation: "no meaningful words in artist name"}
	}

	if overlap := namenorm.Overlap(artistWords, channelWords); len(overlap) > 0 {
		if ratio := ratioOf(overlap, artistWords); ratio >= 0.5 {
			return Match{
				Score:       int(70 + ratio*20),
				Explanation: "channel word match: " + joinSorted(overlap),
			}
		}
	}

	if len(artistWords) == 1 {
		return scoreSingleWord(artistWords, videoTitle, titleWords, channelWords)
	}

	if artistFlat != "" && titleFlat != "" && strings.Contains(titleFlat, artistFlat) {
		return Match{Score: 75, Explanation: "artist name found in video title"}
	}
	if overlap := namenorm.Overlap(artistWords, titleWords); len(overlap) > 0 {
		if ratio := ratioOf(overlap, artistWords); ratio >= 0.5 {
			return Match{
				Score:       int(50 + ratio*20),
				Explanation: "title word match: " + joinSorted(overlap),
			}
		}
	}

	return scorePartial(artistWords, titleWords, channelWords)
}

// scoreSingleWord handles artists whose normalized name is one meaningful
// word. A title is trusted only when it leads with that word; anything else
// is too likely to be a lyric or song title collision.
func scoreSingleWord(artistWords map[string]struct{}, videoTitle string, titleWords, channelWords map[string]struct{}) Match {
	var word string
	for w := range artistWords {
		word = w
	}

	titleTokens := strings.Fields(namenorm.Normalize(videoTitle))
	if len(titleTokens) > 0 && titleTokens[0] == word {
		return Match{Score: 55, Explanation: fmt.Sprintf("single-word artist %q leads video title", word)}
	}

	combined := union(titleWords, channelWords)
	if _, ok := combined[word]; ok {
		return Match{Score: 20, Explanation: fmt.Sprintf("single-word artist %q appears mid-title, ambiguous", word)}
	}
	return Match{Score: 5, Explanation: "no match between artist name and video"}
}

// scorePartial is the weak-signal fallback across all video words.
func scorePartial(artistWords, titleWords, channelWords map[string]struct{}) Match {
	combined := union(titleWords, channelWords)
	overlap := namenorm.Overlap(artistWords, combined)
	if len(overlap) == 0 {
		return Match{Score: 5, Explanation: "no match between artist name and video"}
	}
	ratio := ratioOf(overlap, artistWords)
	return Match{
		Score:       int(20 + ratio*25),
		Explanation: "partial match: " + joinSorted(overlap),
	}
}

func ratioOf(overlap []string, artistWords map[string]struct{}) float64 {
	return float64(len(overlap)) / float64(len(artistWords))
}

func joinSorted(words []string) string {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for w := range a {
		out[w] = struct{}{}
	}
	for w := range b {
		out[w] = struct{}{}
	}
	return out
}
