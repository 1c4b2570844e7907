package parser

import (
	"testing"
	"time"
)

func TestParseEntry_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: PCR run\nsummary: Amplified gene X\ntags:\n  - pcr\n  - genetics\ncreated: 2024-03-15T10:00:00Z\n---\nBody text #gel.\n")
	e, err := ParseEntry(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Title != "PCR run" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Summary != "Amplified gene X" {
		t.Errorf("summary = %q", e.Summary)
	}
	if len(e.Tags) != 3 || e.Tags[0] != "pcr" || e.Tags[1] != "genetics" || e.Tags[2] != "gel" {
		t.Errorf("tags = %v", e.Tags)
	}
	if !e.CreatedAt.Equal(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created = %v", e.CreatedAt)
	}
	if e.Body != "Body text #gel.\n" {
		t.Errorf("body = %q", e.Body)
	}
}

func TestParseEntry_NoFrontmatter(t *testing.T) {
	e, err := ParseEntry([]byte("# Cell culture\nPassage 12.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Title != "Cell culture" {
		t.Errorf("title = %q", e.Title)
	}
	if len(e.Tags) != 0 {
		t.Errorf("tags = %v, want none", e.Tags)
	}
	if !e.CreatedAt.IsZero() {
		t.Errorf("created = %v, want zero", e.CreatedAt)
	}
}

func TestParseEntry_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	e, err := ParseEntry([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Body != input {
		t.Errorf("body = %q, want whole input", e.Body)
	}
}

func TestExtractTags_Dedup(t *testing.T) {
	tags := extractTags("text #beta and #alpha again", []string{"alpha", " ", "alpha"})
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestRenderEntryRoundTrip(t *testing.T) {
	in := Entry{
		Title:     "Western blot",
		Summary:   "Transfer at 100V",
		Body:      "Membrane blocked overnight.",
		Tags:      []string{"protein"},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := RenderEntry(in)
	if err != nil {
		t.Fatalf("RenderEntry: %v", err)
	}
	out, err := ParseEntry(data)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if out.Title != in.Title || out.Summary != in.Summary || !out.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("round trip = %+v", out)
	}
	if out.Body != "Membrane blocked overnight.\n" {
		t.Errorf("body = %q", out.Body)
	}
}

func TestParseNotebook(t *testing.T) {
	nb, err := ParseNotebook([]byte("title: Genetics Study\ndescription: Gene X knockouts\ncolor: '#aabbcc'\n"))
	if err != nil {
		t.Fatalf("ParseNotebook: %v", err)
	}
	if nb.Title != "Genetics Study" || nb.Description != "Gene X knockouts" || nb.Color != "#aabbcc" {
		t.Errorf("notebook = %+v", nb)
	}
	if _, err := ParseNotebook([]byte("title: [unclosed")); err == nil {
		t.Error("expected error for malformed manifest")
	}
}

func TestPathHelpers(t *testing.T) {
	if ID("genetics/pcr.md") != ID("genetics/./pcr.md") {
		t.Error("ID should be stable across equivalent paths")
	}
	if ID("a.md") == ID("b.md") {
		t.Error("distinct paths should have distinct ids")
	}
	if got := NotebookDir("genetics/pcr.md"); got != "genetics" {
		t.Errorf("NotebookDir = %q", got)
	}
	if got := NotebookDir("loose.md"); got != "" {
		t.Errorf("NotebookDir(root) = %q", got)
	}
	if !IsManifestPath("genetics/notebook.yaml") {
		t.Error("top-level manifest should match")
	}
	if IsManifestPath("notebook.yaml") || IsManifestPath("a/b/notebook.yaml") {
		t.Error("only top-level notebook directories carry manifests")
	}
}
