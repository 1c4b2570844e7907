package index

import (
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/starford/labnote/internal/models"
	"github.com/starford/labnote/internal/parser"
	"github.com/starford/labnote/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed entries and notebook manifests are parsed and upserted
//   - files removed from disk are deleted from the index
//
// It returns the number of rows changed.
func Sync(db LabIndex, store storage.Provider, logger *slog.Logger) (int, error) {
	metas, err := store.List("")
	if err != nil {
		return 0, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return 0, err
	}

	changed := 0
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		changed++
		logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeletePath(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		changed++
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	return changed, nil
}

// IndexFile parses data as an entry or notebook manifest and upserts it.
// modTime stands in for a missing creation date.
func IndexFile(db LabIndex, rel string, data []byte, modTime time.Time) error {
	cs := storage.Checksum(data)
	switch {
	case parser.IsManifestPath(rel):
		nb, err := notebookFromManifest(rel, data, modTime)
		if err != nil {
			return err
		}
		return db.UpsertNotebook(nb, rel, cs)
	case parser.IsEntryPath(rel):
		e, err := entryFromFile(rel, data, modTime)
		if err != nil {
			return err
		}
		return db.UpsertEntry(e, cs)
	default:
		return fmt.Errorf("index: not an entry or manifest: %s", rel)
	}
}

func entryFromFile(rel string, data []byte, modTime time.Time) (models.Entry, error) {
	parsed, err := parser.ParseEntry(data)
	if err != nil {
		return models.Entry{}, err
	}
	title := parsed.Title
	if title == "" {
		title = trimExt(path.Base(rel))
	}
	created := parsed.CreatedAt
	if created.IsZero() {
		created = modTime
	}
	var notebookID string
	if dir := parser.NotebookDir(rel); dir != "" {
		notebookID = parser.ID(dir)
	}
	return models.Entry{
		ID:         parser.ID(rel),
		Path:       rel,
		Title:      title,
		Content:    parsed.Body,
		Summary:    parsed.Summary,
		NotebookID: notebookID,
		Tags:       parsed.Tags,
		CreatedAt:  created,
		UpdatedAt:  modTime,
	}, nil
}

func notebookFromManifest(rel string, data []byte, modTime time.Time) (models.Notebook, error) {
	parsed, err := parser.ParseNotebook(data)
	if err != nil {
		return models.Notebook{}, err
	}
	dir := parser.NotebookDir(rel)
	title := parsed.Title
	if title == "" {
		title = dir
	}
	created := parsed.CreatedAt
	if created.IsZero() {
		created = modTime
	}
	return models.Notebook{
		ID:          parser.ID(dir),
		Dir:         dir,
		Title:       title,
		Description: parsed.Description,
		Color:       parsed.Color,
		CreatedAt:   created,
		UpdatedAt:   modTime,
	}, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(path.Ext(name))]
}
