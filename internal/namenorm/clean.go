package namenorm

import (
	"regexp"
	"strings"
)

var (
	eventKeywordPattern = regexp.MustCompile(`(?i)\b(festival|karaoke|cabaret|trivia|bingo|open mic|comedy|standup|stand-up|contest|roast)\b`)
	djLinePattern       = regexp.MustCompile(`(?i)^dj\s*:`)
	memorialPattern     = regexp.MustCompile(`^R\.?I\.?P\.?\s`)
	colonSuffixPattern  = regexp.MustCompile(`:.*$`)
	tourDashPattern     = regexp.MustCompile(`(?i)\s*[-–—]\s*(.*tour.*|live.*|in concert.*|presents.*)$`)
	tourParenPattern    = regexp.MustCompile(`(?i)\s*\(.*tour.*\)$`)
	withSplitPattern    = regexp.MustCompile(`(?i)\s+with\s+`)
	wSlashSplitPattern  = regexp.MustCompile(`(?i)\s+w/\s*`)
	featSplitPattern    = regexp.MustCompile(`(?i)\s+(feat|ft)[.:]\s*.*$`)
	commaSuffixPattern  = regexp.MustCompile(`,.*$`)
)

// CleanTitle extracts the headline act from a raw venue listing title.
// The second return is false when the title describes an event rather than a
// bookable act (festivals, karaoke nights, DJ sets, and the like), in which
// case no search should be attempted.
//
// Multi-act bills are split on commas, slashes, "+", and "with"/"w/"
// variants; only the first listed act is kept.
func CleanTitle(raw string) (string, bool) {
	title := strings.TrimSpace(raw)
	if len(title) < 2 {
		return "", false
	}
	if djLinePattern.MatchString(title) || memorialPattern.MatchString(title) {
		return "", false
	}
	if eventKeywordPattern.MatchString(title) {
		return "", false
	}

	name := colonSuffixPattern.ReplaceAllString(title, "")
	name = tourDashPattern.ReplaceAllString(name, "")
	name = tourParenPattern.ReplaceAllString(name, "")

	if idx := strings.Index(name, " – "); idx >= 0 {
		name = name[:idx]
	} else if idx := strings.Index(name, " - "); idx >= 0 && !strings.Contains(strings.ToLower(name), "with") {
		name = name[:idx]
	}

	name = withSplitPattern.Split(name, 2)[0]
	name = wSlashSplitPattern.Split(name, 2)[0]
	if idx := strings.Index(name, " + "); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.Index(name, " / "); idx >= 0 {
		name = name[:idx]
	}
	name = parentheticalPattern.ReplaceAllString(name, "")
	name = featSplitPattern.ReplaceAllString(name, "")
	name = commaSuffixPattern.ReplaceAllString(name, "")

	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return "", false
	}
	return name, true
}
