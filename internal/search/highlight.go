package search

import (
	"regexp"
	"strings"
)

const (
	markOpen  = `<mark class="bg-yellow-200 text-yellow-900 px-1 rounded">`
	markClose = `</mark>`
)

// highlighter wraps literal, case-insensitive query matches in <mark> spans.
// A nil *highlighter (blank query) returns text unchanged.
type highlighter struct {
	re *regexp.Regexp
}

func newHighlighter(query string) *highlighter {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(NormalizeQuery(query)))
	if err != nil {
		return nil
	}
	return &highlighter{re: re}
}

func (h *highlighter) apply(text string) string {
	if h == nil {
		return text
	}
	return h.re.ReplaceAllStringFunc(text, func(m string) string {
		return markOpen + m + markClose
	})
}

// Highlight wraps every non-overlapping, case-insensitive occurrence of query
// in text with a <mark> element. The query is matched literally; regular
// expression metacharacters carry no meaning. A blank query returns text
// unchanged. Text is not HTML-escaped.
func Highlight(text, query string) string {
	return newHighlighter(query).apply(text)
}
