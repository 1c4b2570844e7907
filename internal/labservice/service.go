// Package labservice coordinates the vault, the index and the search
// session. It owns the current search snapshot and swaps it whenever the
// index changes.
package labservice

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/labnote/internal/index"
	"github.com/starford/labnote/internal/parser"
	"github.com/starford/labnote/internal/search"
	"github.com/starford/labnote/internal/sse"
	"github.com/starford/labnote/internal/storage"
)

// Notifier receives change notifications. *sse.Broker implements it.
type Notifier interface {
	PublishChange(entity, op, id, path string)
	PublishHistory(items []string)
}

var _ Notifier = (*sse.Broker)(nil)

// Options configures the search side of the service.
type Options struct {
	HistoryLimit int
	Search       search.Options
}

// Service coordinates storage, index and search.
type Service struct {
	store    storage.Provider
	db       index.LabIndex
	logger   *slog.Logger
	notifier Notifier
	opts     search.Options
	now      func() time.Time

	snap    atomic.Pointer[search.Snapshot]
	session *search.Session
}

// NewService creates a lab service. The search history is loaded from db.
// Call Sync or Refresh before serving to populate the snapshot.
func NewService(store storage.Provider, db index.LabIndex, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:  store,
		db:     db,
		logger: logger,
		opts:   opts.Search,
		now:    time.Now,
	}
	s.snap.Store(&search.Snapshot{})
	history := search.NewHistory(db, opts.HistoryLimit, logger)
	s.session = search.NewSession(s, history, opts.Search)
	return s
}

// SetNotifier attaches a change listener. It must be called before serving.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Snapshot implements search.SnapshotSource.
func (s *Service) Snapshot() search.Snapshot {
	return *s.snap.Load()
}

// Session returns the shared search session.
func (s *Service) Session() *search.Session {
	return s.session
}

// Refresh reloads the snapshot from the index.
func (s *Service) Refresh() error {
	entries, err := s.db.Entries()
	if err != nil {
		return err
	}
	notebooks, err := s.db.Notebooks()
	if err != nil {
		return err
	}
	s.snap.Store(&search.Snapshot{Entries: entries, Notebooks: notebooks})
	return nil
}

// Sync brings the index up to date with the vault and refreshes the snapshot.
func (s *Service) Sync(_ context.Context) error {
	n, err := index.Sync(s.db, s.store, s.logger)
	if err != nil {
		return err
	}
	s.logger.Info("vault synced", slog.Int("changed", n))
	return s.Refresh()
}

// HandleChange is the watcher callback: it refreshes the snapshot and
// forwards the change to the notifier.
func (s *Service) HandleChange(c index.Change) {
	if err := s.Refresh(); err != nil {
		s.logger.Warn("refresh after change failed", slog.String("path", c.Path), slog.String("error", err.Error()))
	}
	entity, id := sse.EntityEntry, parser.ID(c.Path)
	if c.Notebook {
		entity, id = sse.EntityNotebook, parser.ID(parser.NotebookDir(c.Path))
	}
	s.publishChange(entity, c.Op, id, c.Path)
}

func (s *Service) publishChange(entity, op, id, path string) {
	if s.notifier != nil {
		s.notifier.PublishChange(entity, op, id, path)
	}
}

func (s *Service) publishHistory() {
	if s.notifier != nil {
		s.notifier.PublishHistory(s.session.History())
	}
}
