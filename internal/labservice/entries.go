package labservice

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/labnote/internal/apperr"
	"github.com/starford/labnote/internal/index"
	"github.com/starford/labnote/internal/models"
	"github.com/starford/labnote/internal/parser"
	"github.com/starford/labnote/internal/sse"
)

// EntryInput is the payload for creating an entry.
type EntryInput struct {
	NotebookID string   `json:"notebook_id"`
	Title      string   `json:"title"`
	Body       string   `json:"content"`
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
}

// Validate checks the entry payload.
func (in EntryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Summary, validation.Length(0, 500)),
	)
}

// EntryFilter narrows ListEntries. Empty fields match everything.
type EntryFilter struct {
	NotebookID string
	Tag        string
}

// CreateEntry writes a new entry file into the notebook's directory (or the
// vault root when NotebookID is empty) and indexes it.
func (s *Service) CreateEntry(_ context.Context, in EntryInput) (*models.Entry, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Tags = normalizeTags(in.Tags)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}

	var dir string
	if in.NotebookID != "" {
		nb, err := s.db.Notebook(in.NotebookID)
		if err != nil {
			return nil, err
		}
		dir = nb.Dir
	}

	rel, err := s.freePath(dir, slugify(in.Title, "entry"), ".md")
	if err != nil {
		return nil, err
	}
	now := s.now()
	data, err := parser.RenderEntry(parser.Entry{
		Title:     in.Title,
		Summary:   strings.TrimSpace(in.Summary),
		Body:      in.Body,
		Tags:      in.Tags,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(rel, data); err != nil {
		return nil, err
	}
	if err := index.IndexFile(s.db, rel, data, now); err != nil {
		return nil, err
	}
	if err := s.Refresh(); err != nil {
		return nil, err
	}

	id := parser.ID(rel)
	s.publishChange(sse.EntityEntry, index.OpCreated, id, rel)
	return s.db.Entry(id)
}

// GetEntry returns an entry by id.
func (s *Service) GetEntry(_ context.Context, id string) (*models.Entry, error) {
	return s.db.Entry(id)
}

// ListEntries returns entries from the current snapshot, newest first.
func (s *Service) ListEntries(_ context.Context, f EntryFilter) []models.Entry {
	out := []models.Entry{}
	for _, e := range s.Snapshot().Entries {
		if f.NotebookID != "" && e.NotebookID != f.NotebookID {
			continue
		}
		if f.Tag != "" && !hasTag(e.Tags, f.Tag) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// normalizeTags trims whitespace and a leading '#', dropping blanks and
// duplicates.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
