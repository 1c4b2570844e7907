package labservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/labnote/internal/apperr"
	"github.com/starford/labnote/internal/index"
	"github.com/starford/labnote/internal/models"
	"github.com/starford/labnote/internal/parser"
	"github.com/starford/labnote/internal/sse"
)

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NotebookInput is the payload for creating a notebook.
type NotebookInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Validate checks the notebook payload.
func (in NotebookInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 120)),
		validation.Field(&in.Description, validation.Length(0, 1000)),
		validation.Field(&in.Color, validation.Match(colorRe)),
	)
}

// NotebookPatch holds the fields to change. Nil fields are left untouched.
type NotebookPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// NotebookView is a notebook with its entry count.
type NotebookView struct {
	models.Notebook
	EntryCount int `json:"entry_count"`
}

// CreateNotebook creates a notebook directory with its manifest.
func (s *Service) CreateNotebook(_ context.Context, in NotebookInput) (*models.Notebook, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}

	dir := slugify(in.Title, "notebook")
	manifest := path.Join(dir, parser.ManifestName)
	if _, err := s.store.Read(manifest); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	now := s.now()
	if err := s.writeManifest(manifest, parser.Notebook{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Color:       in.Color,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}

	id := parser.ID(dir)
	s.publishChange(sse.EntityNotebook, index.OpCreated, id, manifest)
	return s.db.Notebook(id)
}

// UpdateNotebook applies patch to the notebook's manifest.
func (s *Service) UpdateNotebook(_ context.Context, id string, patch NotebookPatch) (*models.Notebook, error) {
	nb, err := s.db.Notebook(id)
	if err != nil {
		return nil, err
	}
	in := NotebookInput{Title: nb.Title, Description: nb.Description, Color: nb.Color}
	if patch.Title != nil {
		in.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		in.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Color != nil {
		in.Color = *patch.Color
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}

	manifest := path.Join(nb.Dir, parser.ManifestName)
	if err := s.writeManifest(manifest, parser.Notebook{
		Title:       in.Title,
		Description: in.Description,
		Color:       in.Color,
		CreatedAt:   nb.CreatedAt,
	}); err != nil {
		return nil, err
	}

	s.publishChange(sse.EntityNotebook, index.OpUpdated, id, manifest)
	return s.db.Notebook(id)
}

// DeleteNotebook removes an empty notebook. Notebooks that still hold
// entries are refused with apperr.ErrConflict.
func (s *Service) DeleteNotebook(_ context.Context, id string) error {
	nb, err := s.db.Notebook(id)
	if err != nil {
		return err
	}
	n, err := s.db.EntryCount(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: notebook has %d entries", apperr.ErrConflict, n)
	}

	manifest := path.Join(nb.Dir, parser.ManifestName)
	if err := s.store.Delete(manifest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := s.db.DeletePath(manifest); err != nil {
		return err
	}
	if err := s.store.RemoveDir(nb.Dir); err != nil {
		s.logger.Warn("notebook dir left behind", slog.String("dir", nb.Dir), slog.String("error", err.Error()))
	}
	if err := s.Refresh(); err != nil {
		return err
	}

	s.publishChange(sse.EntityNotebook, index.OpDeleted, id, manifest)
	return nil
}

// GetNotebook returns a notebook with its entry count.
func (s *Service) GetNotebook(_ context.Context, id string) (*NotebookView, error) {
	nb, err := s.db.Notebook(id)
	if err != nil {
		return nil, err
	}
	n, err := s.db.EntryCount(id)
	if err != nil {
		return nil, err
	}
	return &NotebookView{Notebook: *nb, EntryCount: n}, nil
}

// ListNotebooks returns every notebook in the snapshot, newest first.
func (s *Service) ListNotebooks(_ context.Context) []NotebookView {
	snap := s.Snapshot()
	counts := make(map[string]int, len(snap.Notebooks))
	for _, e := range snap.Entries {
		counts[e.NotebookID]++
	}
	out := make([]NotebookView, 0, len(snap.Notebooks))
	for _, nb := range snap.Notebooks {
		out = append(out, NotebookView{Notebook: nb, EntryCount: counts[nb.ID]})
	}
	return out
}

func (s *Service) writeManifest(rel string, nb parser.Notebook) error {
	data, err := parser.RenderNotebook(nb)
	if err != nil {
		return err
	}
	if err := s.store.Write(rel, data); err != nil {
		return err
	}
	if err := index.IndexFile(s.db, rel, data, s.now()); err != nil {
		return err
	}
	return s.Refresh()
}
