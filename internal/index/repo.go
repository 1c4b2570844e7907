package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/labnote/internal/apperr"
	"github.com/starford/labnote/internal/models"
)

const entrySelect = `
	SELECT e.id, e.path, e.title, e.body, e.summary, COALESCE(n.id, ''), COALESCE(n.title, ''),
	       e.tags, e.created_at, e.updated_at
	FROM entries e
	LEFT JOIN notebooks n ON n.id = e.notebook_id`

type scanner interface {
	Scan(dest ...any) error
}

// UpsertEntry inserts or replaces an entry keyed by its vault path.
func (db *DB) UpsertEntry(e models.Entry, checksum string) error {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("index: encode tags: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO entries (id, path, title, body, summary, notebook_id, tags, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			body        = excluded.body,
			summary     = excluded.summary,
			notebook_id = excluded.notebook_id,
			tags        = excluded.tags,
			checksum    = excluded.checksum,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at
	`, e.ID, e.Path, e.Title, e.Content, e.Summary, e.NotebookID, string(tagsJSON), checksum,
		e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}
	return nil
}

// UpsertNotebook inserts or replaces a notebook. path is the manifest path.
func (db *DB) UpsertNotebook(nb models.Notebook, path, checksum string) error {
	_, err := db.conn.Exec(`
		INSERT INTO notebooks (id, dir, path, title, description, color, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			description = excluded.description,
			color       = excluded.color,
			checksum    = excluded.checksum,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at
	`, nb.ID, nb.Dir, path, nb.Title, nb.Description, nb.Color, checksum,
		nb.CreatedAt.UTC(), nb.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert notebook: %w", err)
	}
	return nil
}

// DeletePath removes whatever row (entry or notebook manifest) is indexed
// under path.
func (db *DB) DeletePath(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM entries WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete entry: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM notebooks WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete notebook: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a path, or empty string if not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`
		SELECT checksum FROM entries WHERE path = ?
		UNION ALL
		SELECT checksum FROM notebooks WHERE path = ?
		LIMIT 1`, path, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path→checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`
		SELECT path, checksum FROM entries
		UNION ALL
		SELECT path, checksum FROM notebooks`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Entries returns every entry, newest first, with the owning notebook's
// title joined in.
func (db *DB) Entries() ([]models.Entry, error) {
	rows, err := db.conn.Query(entrySelect + ` ORDER BY e.created_at DESC, e.path`)
	if err != nil {
		return nil, fmt.Errorf("index: entries: %w", err)
	}
	defer rows.Close()

	out := []models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Entry returns a single entry by id.
func (db *DB) Entry(id string) (*models.Entry, error) {
	e, err := scanEntry(db.conn.QueryRow(entrySelect+` WHERE e.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: entry: %w", err)
	}
	return e, nil
}

// Notebooks returns every notebook, newest first.
func (db *DB) Notebooks() ([]models.Notebook, error) {
	rows, err := db.conn.Query(`
		SELECT id, dir, title, description, color, created_at, updated_at
		FROM notebooks ORDER BY created_at DESC, dir`)
	if err != nil {
		return nil, fmt.Errorf("index: notebooks: %w", err)
	}
	defer rows.Close()

	out := []models.Notebook{}
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan notebook: %w", err)
		}
		out = append(out, *nb)
	}
	return out, rows.Err()
}

// Notebook returns a single notebook by id.
func (db *DB) Notebook(id string) (*models.Notebook, error) {
	nb, err := scanNotebook(db.conn.QueryRow(`
		SELECT id, dir, title, description, color, created_at, updated_at
		FROM notebooks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: notebook: %w", err)
	}
	return nb, nil
}

// EntryCount returns how many entries belong to the notebook.
func (db *DB) EntryCount(notebookID string) (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries WHERE notebook_id = ?`, notebookID).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: entry count: %w", err)
	}
	return n, nil
}

func scanEntry(s scanner) (*models.Entry, error) {
	var e models.Entry
	var tagsJSON string
	if err := s.Scan(&e.ID, &e.Path, &e.Title, &e.Content, &e.Summary, &e.NotebookID, &e.NotebookTitle,
		&tagsJSON, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil || e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}

func scanNotebook(s scanner) (*models.Notebook, error) {
	var nb models.Notebook
	if err := s.Scan(&nb.ID, &nb.Dir, &nb.Title, &nb.Description, &nb.Color, &nb.CreatedAt, &nb.UpdatedAt); err != nil {
		return nil, err
	}
	return &nb, nil
}
