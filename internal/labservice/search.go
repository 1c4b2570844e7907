package labservice

import (
	"strings"

	"github.com/starford/labnote/internal/search"
)

// SearchResponse is the outcome of a committed search.
type SearchResponse struct {
	Query       string          `json:"query"`
	Kind        search.Kind     `json:"kind,omitempty"`
	Results     []search.Result `json:"results"`
	Groups      search.Groups   `json:"groups"`
	IsSearching bool            `json:"is_searching"`
	HasResults  bool            `json:"has_results"`
}

// Search commits query on the shared session and returns its ranked
// results, optionally narrowed to one kind. Groups always count every kind.
// The response is derived from query itself, not from the session, which
// other callers may move on concurrently.
func (s *Service) Search(query string, kind search.Kind) SearchResponse {
	query = search.NormalizeQuery(query)
	if s.session.Search(query) {
		s.publishHistory()
	}
	results := search.Rank(s.Snapshot(), query, s.opts)
	return SearchResponse{
		Query:       query,
		Kind:        kind,
		Results:     search.FilterKind(results, kind),
		Groups:      search.GroupCounts(results),
		IsSearching: strings.TrimSpace(query) != "",
		HasResults:  len(results) > 0,
	}
}

// SetQuery updates the live query without recording history.
func (s *Service) SetQuery(query string) search.State {
	s.session.SetQuery(query)
	return s.session.State()
}

// State returns the full session state.
func (s *Service) State() search.State {
	return s.session.State()
}

// Suggest returns suggestions for query without touching the session.
func (s *Service) Suggest(query string) []string {
	return search.Suggest(s.Snapshot(), query, s.opts.SuggestionLimit)
}

// History returns the committed queries, most recent first.
func (s *Service) History() []string {
	return s.session.History()
}

// ClearHistory empties the search history.
func (s *Service) ClearHistory() {
	s.session.ClearHistory()
	s.publishHistory()
}
