package index

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/labnote/internal/apperr"
	"github.com/starford/labnote/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "labnote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"entries", "notebooks", "settings"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestUpsertEntryAndGetChecksum(t *testing.T) {
	db := testDB(t)
	e := models.Entry{
		ID: "e1", Path: "genetics/pcr.md", Title: "PCR run", Content: "body",
		Tags: []string{"pcr"}, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	if err := db.UpsertEntry(e, "abc123"); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}
	cs, err := db.GetChecksum("genetics/pcr.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestUpsertEntry_TagsStoredAsJSON(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertEntry(models.Entry{ID: "e1", Path: "a.md", Title: "A", CreatedAt: time.Now(), UpdatedAt: time.Now()}, "c1"); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}
	if err := db.UpsertEntry(models.Entry{
		ID: "e2", Path: "b.md", Title: "B", Tags: []string{"pcr", "gel"}, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}, "c2"); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}

	var raw string
	if err := db.conn.QueryRow(`SELECT tags FROM entries WHERE id = 'e1'`).Scan(&raw); err != nil {
		t.Fatal(err)
	}
	if raw != "[]" {
		t.Errorf("nil tags stored as %q, want []", raw)
	}

	e, err := db.Entry("e2")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if len(e.Tags) != 2 || e.Tags[0] != "pcr" || e.Tags[1] != "gel" {
		t.Errorf("tags = %v", e.Tags)
	}
}

func TestEntryJoinsNotebookTitle(t *testing.T) {
	db := testDB(t)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	_ = db.UpsertNotebook(models.Notebook{ID: "nb1", Dir: "genetics", Title: "Genetics Lab", CreatedAt: now, UpdatedAt: now},
		"genetics/notebook.yaml", "n")
	_ = db.UpsertEntry(models.Entry{ID: "e1", Path: "genetics/a.md", Title: "A", NotebookID: "nb1",
		Tags: []string{"pcr", "gel"}, CreatedAt: now, UpdatedAt: now}, "1")
	_ = db.UpsertEntry(models.Entry{ID: "e2", Path: "loose.md", Title: "Loose", CreatedAt: now, UpdatedAt: now}, "2")

	e, err := db.Entry("e1")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if e.NotebookTitle != "Genetics Lab" || e.NotebookID != "nb1" {
		t.Errorf("notebook join = %q/%q", e.NotebookID, e.NotebookTitle)
	}
	if len(e.Tags) != 2 || e.Tags[0] != "pcr" {
		t.Errorf("tags = %v", e.Tags)
	}
	if !e.CreatedAt.Equal(now) {
		t.Errorf("created = %v, want %v", e.CreatedAt, now)
	}

	loose, err := db.Entry("e2")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if loose.NotebookTitle != "" || loose.Tags == nil {
		t.Errorf("loose entry = %+v", loose)
	}
}

func TestEntriesNewestFirst(t *testing.T) {
	db := testDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = db.UpsertEntry(models.Entry{ID: "old", Path: "old.md", CreatedAt: base, UpdatedAt: base}, "1")
	_ = db.UpsertEntry(models.Entry{ID: "new", Path: "new.md", CreatedAt: base.Add(48 * time.Hour), UpdatedAt: base}, "2")

	entries, err := db.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "new" || entries[1].ID != "old" {
		t.Errorf("order = %+v", entries)
	}
}

func TestDeletePath(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(models.Entry{ID: "e", Path: "del.md", CreatedAt: now, UpdatedAt: now}, "x")
	_ = db.UpsertNotebook(models.Notebook{ID: "n", Dir: "nb", CreatedAt: now, UpdatedAt: now}, "nb/notebook.yaml", "y")

	if err := db.DeletePath("del.md"); err != nil {
		t.Fatalf("DeletePath: %v", err)
	}
	if err := db.DeletePath("nb/notebook.yaml"); err != nil {
		t.Fatalf("DeletePath: %v", err)
	}
	all, _ := db.AllChecksums()
	if len(all) != 0 {
		t.Errorf("rows left after delete: %v", all)
	}
	if _, err := db.Notebook("n"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Notebook err = %v, want ErrNotFound", err)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(models.Entry{ID: "u", Path: "up.md", Title: "Old", CreatedAt: now, UpdatedAt: now}, "1")
	_ = db.UpsertEntry(models.Entry{ID: "u", Path: "up.md", Title: "New", Tags: []string{"new"}, CreatedAt: now, UpdatedAt: now}, "2")

	e, _ := db.Entry("u")
	if e == nil || e.Title != "New" {
		t.Errorf("entry = %+v, want title New", e)
	}
	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
}

func TestEntryCount(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(models.Entry{ID: "a", Path: "nb/a.md", NotebookID: "nb", CreatedAt: now, UpdatedAt: now}, "1")
	_ = db.UpsertEntry(models.Entry{ID: "b", Path: "nb/b.md", NotebookID: "nb", CreatedAt: now, UpdatedAt: now}, "2")
	_ = db.UpsertEntry(models.Entry{ID: "c", Path: "c.md", CreatedAt: now, UpdatedAt: now}, "3")

	n, err := db.EntryCount("nb")
	if err != nil {
		t.Fatalf("EntryCount: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestEntry_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.Entry("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	db := testDB(t)

	items, err := db.LoadHistory()
	if err != nil || len(items) != 0 {
		t.Fatalf("fresh history = %v, %v", items, err)
	}
	if err := db.SaveHistory([]string{"pcr", "gel"}); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	if err := db.SaveHistory([]string{"western", "pcr", "gel"}); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	items, err = db.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(items) != 3 || items[0] != "western" {
		t.Errorf("history = %v", items)
	}
	if err := db.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	items, _ = db.LoadHistory()
	if len(items) != 0 {
		t.Errorf("history after clear = %v", items)
	}
}

func TestHistoryMalformed(t *testing.T) {
	db := testDB(t)
	_, _ = db.conn.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, historyKey, "{not json")
	if _, err := db.LoadHistory(); err == nil {
		t.Error("expected decode error for malformed history")
	}
}
