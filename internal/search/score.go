// Package search implements the lab notebook search engine: relevance
// scoring, match highlighting, corpus ranking, autocomplete suggestions and
// the committed-query history.
//
// Everything except History and Session is a pure function over an immutable
// Snapshot, so callers may re-derive results whenever the query or the
// snapshot changes.
package search

import "strings"

// Ranking weights.
const (
	phraseWeight  = 100
	tokenWeight   = 10
	prefixWeight  = 50
	notebookBonus = 20
)

// NormalizeQuery replaces invalid UTF-8 in query with U+FFFD. Every entry
// point of the package applies it, so scoring, highlighting and history all
// see the same string.
func NormalizeQuery(query string) string {
	return strings.ToValidUTF8(query, "\uFFFD")
}

// Score returns the relevance of text for query. Matching is
// case-insensitive and additive:
//   - +100 when text contains query
//   - +10 for every whitespace-separated query token found in text
//   - +50 when text starts with query
//
// A blank query scores 0.
func Score(text, query string) int {
	if strings.TrimSpace(query) == "" {
		return 0
	}

	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(NormalizeQuery(query))

	score := 0
	if strings.Contains(lowerText, lowerQuery) {
		score += phraseWeight
	}
	for _, token := range strings.Fields(lowerQuery) {
		if strings.Contains(lowerText, token) {
			score += tokenWeight
		}
	}
	if strings.HasPrefix(lowerText, lowerQuery) {
		score += prefixWeight
	}
	return score
}
