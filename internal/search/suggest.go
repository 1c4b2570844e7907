package search

import (
	"strings"
	"unicode/utf8"
)

const minSuggestionQuery = 2

// Suggest returns up to limit distinct autocomplete candidates for the raw,
// possibly untrimmed, query: entry titles, notebook titles and #tags that
// contain it case-insensitively. Order follows evaluation order (entries,
// notebooks, tags); no relevance ranking is applied. Queries shorter than two
// characters yield nothing. A limit <= 0 means the default of 5.
func Suggest(snap Snapshot, query string, limit int) []string {
	query = NormalizeQuery(query)
	if strings.TrimSpace(query) == "" || utf8.RuneCountInString(query) < minSuggestionQuery {
		return []string{}
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	needle := strings.ToLower(query)

	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	add := func(candidate string) bool {
		if _, ok := seen[candidate]; ok {
			return false
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
		return len(out) == limit
	}

	for _, e := range snap.Entries {
		if strings.Contains(strings.ToLower(e.Title), needle) && add(e.Title) {
			return out
		}
	}
	for _, nb := range snap.Notebooks {
		if strings.Contains(strings.ToLower(nb.Title), needle) && add(nb.Title) {
			return out
		}
	}
	for _, tag := range snap.Tags() {
		if strings.Contains(strings.ToLower(tag), needle) && add("#"+tag) {
			return out
		}
	}
	return out
}
