package search

import (
	"strings"
	"sync"
)

// SnapshotSource provides the current corpus. Implementations swap in a new
// Snapshot value when the underlying data changes.
type SnapshotSource interface {
	Snapshot() Snapshot
}

// SnapshotFunc adapts a function to SnapshotSource.
type SnapshotFunc func() Snapshot

// Snapshot implements SnapshotSource.
func (f SnapshotFunc) Snapshot() Snapshot { return f() }

// State is everything a presentation layer renders for the search box and
// results page, derived from a single read of the query.
type State struct {
	Query       string   `json:"query"`
	Results     []Result `json:"results"`
	Groups      Groups   `json:"groups"`
	Suggestions []string `json:"suggestions"`
	History     []string `json:"history"`
	IsSearching bool     `json:"is_searching"`
	HasResults  bool     `json:"has_results"`
}

// Session holds the current query and the query history and derives results
// and suggestions from the source on demand. It is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	query   string
	source  SnapshotSource
	history *History
	opts    Options
}

// NewSession creates a session over source. A nil history keeps an
// in-memory history of the default size.
func NewSession(source SnapshotSource, history *History, opts Options) *Session {
	if history == nil {
		history = NewHistory(nil, DefaultHistoryLimit, nil)
	}
	return &Session{
		source:  source,
		history: history,
		opts:    opts.withDefaults(),
	}
}

// Search commits query: it becomes the current query and, when not blank,
// is recorded in the history. It reports whether the history changed.
func (s *Session) Search(query string) bool {
	query = NormalizeQuery(query)
	s.SetQuery(query)
	return s.history.Record(query)
}

// SetQuery replaces the current query without touching the history. Used for
// live typing.
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	s.query = NormalizeQuery(query)
	s.mu.Unlock()
}

// Query returns the current, possibly uncommitted, query.
func (s *Session) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Results ranks the current snapshot against the current query.
func (s *Session) Results() []Result {
	return Rank(s.source.Snapshot(), s.Query(), s.opts)
}

// Suggestions returns autocomplete candidates for the current query.
func (s *Session) Suggestions() []string {
	return Suggest(s.source.Snapshot(), s.Query(), s.opts.SuggestionLimit)
}

// History returns the committed queries, most recent first.
func (s *Session) History() []string {
	return s.history.Items()
}

// ClearHistory empties the history.
func (s *Session) ClearHistory() {
	s.history.Clear()
}

// IsSearching reports whether the current query is non-blank.
func (s *Session) IsSearching() bool {
	return strings.TrimSpace(s.Query()) != ""
}

// HasResults reports whether the current query matches anything.
func (s *Session) HasResults() bool {
	return len(s.Results()) > 0
}

// State derives the full session view from one snapshot and one query read.
func (s *Session) State() State {
	query := s.Query()
	snap := s.source.Snapshot()
	results := Rank(snap, query, s.opts)
	return State{
		Query:       query,
		Results:     results,
		Groups:      GroupCounts(results),
		Suggestions: Suggest(snap, query, s.opts.SuggestionLimit),
		History:     s.history.Items(),
		IsSearching: strings.TrimSpace(query) != "",
		HasResults:  len(results) > 0,
	}
}
