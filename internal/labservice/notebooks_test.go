package labservice

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/labnote/internal/apperr"
	"github.com/starford/labnote/internal/parser"
)

func TestCreateNotebook(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	nb, err := e.svc.CreateNotebook(ctx, NotebookInput{Title: "Cell Culture", Color: "#aabbcc"})
	require.NoError(t, err)
	assert.Equal(t, "cell-culture", nb.Dir)
	assert.Equal(t, parser.ID("cell-culture"), nb.ID)
	assert.Equal(t, "#aabbcc", nb.Color)
	assert.True(t, nb.CreatedAt.Equal(fixedNow))

	assert.Len(t, e.svc.ListNotebooks(ctx), 2)
	assert.Contains(t, e.notifier.changes, "notebook.created:cell-culture/notebook.yaml")

	_, err = e.svc.CreateNotebook(ctx, NotebookInput{Title: "cell culture"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestCreateNotebook_Invalid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateNotebook(ctx, NotebookInput{Title: ""})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = e.svc.CreateNotebook(ctx, NotebookInput{Title: "Colors", Color: "red"})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestUpdateNotebook(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := parser.ID("genetics")

	title := "Molecular Genetics"
	nb, err := e.svc.UpdateNotebook(ctx, id, NotebookPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Molecular Genetics", nb.Title)
	assert.Equal(t, "PCR and gel work", nb.Description)
	assert.Equal(t, 2024, nb.CreatedAt.Year())

	entries := e.svc.ListEntries(ctx, EntryFilter{NotebookID: id})
	require.NotEmpty(t, entries)
	assert.Equal(t, "Molecular Genetics", entries[0].NotebookTitle)

	_, err = e.svc.UpdateNotebook(ctx, "missing", NotebookPatch{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteNotebook(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	err := e.svc.DeleteNotebook(ctx, parser.ID("genetics"))
	assert.ErrorIs(t, err, apperr.ErrConflict)

	nb, err := e.svc.CreateNotebook(ctx, NotebookInput{Title: "Empty"})
	require.NoError(t, err)
	require.NoError(t, e.svc.DeleteNotebook(ctx, nb.ID))

	_, err = e.svc.GetNotebook(ctx, nb.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, statErr := os.Stat(filepath.Join(e.store.Root(), "empty"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Contains(t, e.notifier.changes, "notebook.deleted:empty/notebook.yaml")
}

func TestGetNotebook_EntryCount(t *testing.T) {
	e := newEnv(t)
	nb, err := e.svc.GetNotebook(context.Background(), parser.ID("genetics"))
	require.NoError(t, err)
	assert.Equal(t, 2, nb.EntryCount)
	assert.Equal(t, "Genetics Lab", nb.Title)
}
