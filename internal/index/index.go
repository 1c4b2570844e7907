package index

import (
	"github.com/starford/labnote/internal/models"
	"github.com/starford/labnote/internal/search"
)

// LabIndex defines the index operations used by the service layer.
// Consumers should depend on this interface rather than the concrete *DB type.
type LabIndex interface {
	search.HistoryStore

	UpsertEntry(e models.Entry, checksum string) error
	UpsertNotebook(nb models.Notebook, path, checksum string) error
	DeletePath(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Entries() ([]models.Entry, error)
	Notebooks() ([]models.Notebook, error)
	Entry(id string) (*models.Entry, error)
	Notebook(id string) (*models.Notebook, error)
	EntryCount(notebookID string) (int, error)
	Close() error
}

// Verify *DB satisfies LabIndex at compile time.
var _ LabIndex = (*DB)(nil)
