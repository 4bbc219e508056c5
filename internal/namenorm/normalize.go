package namenorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	leadingThePattern    = regexp.MustCompile(`^the\s+`)
	tourSuffixPattern    = regexp.MustCompile(`\s*[-–—]\s*(tour|us tour|headline tour|album release|live|in concert|concert|show|anniversary|tribute|benefit|dance|jam|bash)\b.*$`)
	annualSuffixPattern  = regexp.MustCompile(`\s*\d+(st|nd|rd|th)\s+annual\b.*$`)
	parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)`)
	slashPattern         = regexp.MustCompile(`\s*/\s*`)
	punctuationPattern   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes an artist name for fuzzy comparison: lowercases,
// folds diacritics, strips a leading "the", tour and event suffixes, and
// parentheticals, then removes punctuation and collapses whitespace.
// Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ToLower(strings.TrimSpace(foldDiacritics(name)))
	name = leadingThePattern.ReplaceAllString(name, "")
	name = tourSuffixPattern.ReplaceAllString(name, "")
	name = annualSuffixPattern.ReplaceAllString(name, "")
	name = parentheticalPattern.ReplaceAllString(name, "")
	name = slashPattern.ReplaceAllString(name, " ")
	name = punctuationPattern.ReplaceAllString(name, "")
	name = whitespacePattern.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// WordSet returns the meaningful words (3+ characters) of a normalized name.
func WordSet(name string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, token := range strings.Fields(Normalize(name)) {
		if len(token) >= 3 {
			words[token] = struct{}{}
		}
	}
	return words
}

// Flatten reduces text to lowercase alphanumerics for containment checks.
// "Beyoncé" and "beyonce" flatten to the same string.
func Flatten(text string) string {
	folded := strings.ToLower(foldDiacritics(text))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Overlap returns the words present in both sets.
func Overlap(a, b map[string]struct{}) []string {
	var shared []string
	for word := range a {
		if _, ok := b[word]; ok {
			shared = append(shared, word)
		}
	}
	return shared
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
