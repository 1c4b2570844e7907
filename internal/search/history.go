package search

import (
	"log/slog"
	"strings"
	"sync"
)

// DefaultHistoryLimit is the number of committed queries kept.
const DefaultHistoryLimit = 10

// HistoryStore persists the committed-query history.
type HistoryStore interface {
	// LoadHistory returns the persisted queries, most recent first.
	LoadHistory() ([]string, error)
	// SaveHistory replaces the persisted queries.
	SaveHistory(items []string) error
	// ClearHistory removes the persisted record.
	ClearHistory() error
}

// History is the most-recent-first list of committed queries. The in-memory
// list is authoritative; the store is written through and its failures are
// logged, never returned.
type History struct {
	mu     sync.Mutex
	items  []string
	limit  int
	store  HistoryStore
	logger *slog.Logger
}

// NewHistory loads the history from store. A nil store keeps history in
// memory only. Load failures and malformed records start an empty history.
func NewHistory(store HistoryStore, limit int, logger *slog.Logger) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &History{limit: limit, store: store, logger: logger}
	if store == nil {
		return h
	}
	loaded, err := store.LoadHistory()
	if err != nil {
		logger.Warn("history: load failed, starting empty", slog.String("error", err.Error()))
		return h
	}
	h.items = sanitize(loaded, limit)
	return h
}

// Record prepends query, dropping any earlier identical entry, and keeps the
// newest limit items. Blank queries are ignored. It reports whether the
// history changed.
func (h *History) Record(query string) bool {
	query = NormalizeQuery(query)
	if strings.TrimSpace(query) == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) > 0 && h.items[0] == query {
		return false
	}

	next := make([]string, 0, h.limit)
	next = append(next, query)
	for _, q := range h.items {
		if q == query {
			continue
		}
		if len(next) == h.limit {
			break
		}
		next = append(next, q)
	}
	h.items = next
	h.persist(next)
	return true
}

// Clear empties the history and removes the persisted record.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = nil
	if h.store == nil {
		return
	}
	if err := h.store.ClearHistory(); err != nil {
		h.logger.Warn("history: clear failed", slog.String("error", err.Error()))
	}
}

// Items returns a copy of the history, most recent first.
func (h *History) Items() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) persist(items []string) {
	if h.store == nil {
		return
	}
	snapshot := make([]string, len(items))
	copy(snapshot, items)
	if err := h.store.SaveHistory(snapshot); err != nil {
		h.logger.Warn("history: save failed", slog.String("error", err.Error()))
	}
}

// sanitize drops blanks and duplicates from a loaded record and truncates it.
func sanitize(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, min(len(items), limit))
	for _, q := range items {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
		if len(out) == limit {
			break
		}
	}
	return out
}

// MemoryStore is a HistoryStore that keeps the record in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	items []string
}

// NewMemoryStore returns a MemoryStore seeded with items.
func NewMemoryStore(items ...string) *MemoryStore {
	return &MemoryStore{items: items}
}

// LoadHistory implements HistoryStore.
func (m *MemoryStore) LoadHistory() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.items))
	copy(out, m.items)
	return out, nil
}

// SaveHistory implements HistoryStore.
func (m *MemoryStore) SaveHistory(items []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]string(nil), items...)
	return nil
}

// ClearHistory implements HistoryStore.
func (m *MemoryStore) ClearHistory() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}
