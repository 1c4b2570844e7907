package index

import (
	"log/slog"
	"os"
	"testing"

	"github.com/starford/labnote/internal/parser"
	"github.com/starford/labnote/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSync_IndexesVault(t *testing.T) {
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("genetics/notebook.yaml", []byte("title: Genetics Lab\ndescription: PCR work\n"))
	_ = store.Write("genetics/pcr.md", []byte("---\ntitle: PCR run\ntags: [pcr]\n---\n\nCycles #thermo\n"))
	_ = store.Write("scratch.md", []byte("# Scratch\n"))

	n, err := Sync(db, store, quietLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 3 {
		t.Errorf("changed = %d, want 3", n)
	}

	e, err := db.Entry(parser.ID("genetics/pcr.md"))
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if e.Title != "PCR run" || e.NotebookTitle != "Genetics Lab" {
		t.Errorf("entry = %+v", e)
	}
	if len(e.Tags) != 2 || e.Tags[1] != "thermo" {
		t.Errorf("tags = %v", e.Tags)
	}
	if e.CreatedAt.IsZero() {
		t.Error("created should fall back to mtime")
	}

	scratch, err := db.Entry(parser.ID("scratch.md"))
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if scratch.Title != "Scratch" || scratch.NotebookID != "" {
		t.Errorf("scratch = %+v", scratch)
	}

	nbs, _ := db.Notebooks()
	if len(nbs) != 1 || nbs[0].Description != "PCR work" || nbs[0].Dir != "genetics" {
		t.Errorf("notebooks = %+v", nbs)
	}
}

func TestSync_SkipsUnchangedAndRemovesStale(t *testing.T) {
	db := testDB(t)
	store, _ := storage.NewFS(t.TempDir())
	_ = store.Write("a.md", []byte("# A"))
	_ = store.Write("b.md", []byte("# B"))

	if _, err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	n, _ := Sync(db, store, quietLogger())
	if n != 0 {
		t.Errorf("second sync changed %d rows, want 0", n)
	}

	_ = store.Delete("b.md")
	n, _ = Sync(db, store, quietLogger())
	if n != 1 {
		t.Errorf("changed = %d, want 1", n)
	}
	if cs, _ := db.GetChecksum("b.md"); cs != "" {
		t.Error("stale entry still indexed")
	}
}

func TestSync_TitleFallsBackToFileName(t *testing.T) {
	db := testDB(t)
	store, _ := storage.NewFS(t.TempDir())
	_ = store.Write("notes/untitled-run.md", []byte("no heading here"))

	if _, err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	e, err := db.Entry(parser.ID("notes/untitled-run.md"))
	if err != nil {
		t.Fatal(err)
	}
	if e.Title != "untitled-run" {
		t.Errorf("title = %q", e.Title)
	}
}
