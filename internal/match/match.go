// Package match implements the literal keyword containment used by every
// exercise engine. Matching is case-insensitive substring containment so that
// inflected forms in the source text ("frihetens") hit their keyword
// ("frihet") without any stemming.
package match

import "strings"

// Matches reports whether word contains keyword, ignoring case.
// An empty keyword never matches.
func Matches(word, keyword string) bool {
	if keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(word), strings.ToLower(keyword))
}

// MatchesAny reports whether word contains at least one of keywords.
func MatchesAny(word string, keywords []string) bool {
	_, ok := FirstMatch(word, keywords)
	return ok
}

// FirstMatch returns the first keyword, in the given order, contained in word.
func FirstMatch(word string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if Matches(word, kw) {
			return kw, true
		}
	}
	return "", false
}

// Matched returns the keywords contained in text, preserving keyword order.
// Duplicate keywords are reported once.
func Matched(text string, keywords []string) []string {
	var out []string
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		if Matches(text, kw) {
			seen[key] = true
			out = append(out, kw)
		}
	}
	return out
}

// CountMatches returns how many distinct keywords text contains.
func CountMatches(text string, keywords []string) int {
	return len(Matched(text, keywords))
}

// FirstPhrase returns the first phrase contained in text. It is the
// anti-pattern counterpart of FirstMatch and exists for readability at call
// sites.
func FirstPhrase(text string, phrases []string) (string, bool) {
	return FirstMatch(text, phrases)
}
