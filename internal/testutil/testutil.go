// Package testutil provides shared test helpers for setting up vaults and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/labnote/internal/index"
	"github.com/starford/labnote/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "labnote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// Seed writes files (vault-relative path → content) into store.
func Seed(t *testing.T, store storage.Provider, files map[string]string) {
	t.Helper()
	for p, content := range files {
		if err := store.Write(p, []byte(content)); err != nil {
			t.Fatalf("seed %s: %v", p, err)
		}
	}
}

// LabVault is a small vault with one notebook, two entries in it and one
// loose entry at the vault root.
var LabVault = map[string]string{
	"genetics/notebook.yaml": "title: Genetics Lab\ndescription: PCR and gel work\ncreated: 2024-03-10T09:00:00Z\n",
	"genetics/pcr-run.md": "---\ntitle: PCR amplification run\nsummary: 30 cycles at 58C\ntags: [pcr, genetics]\n" +
		"created: 2024-03-15T12:00:00Z\n---\n\nRan PCR on samples A-F.\n",
	"genetics/gel.md": "---\ntitle: Gel electrophoresis\ntags: [gel]\ncreated: 2024-03-14T12:00:00Z\n---\n\n" +
		"Bands visible at 500bp after PCR.\n",
	"scratch.md": "---\ntitle: Buffer recipes\ncreated: 2024-03-01T12:00:00Z\n---\n\nTAE 50x stock.\n",
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
