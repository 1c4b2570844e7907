// Package parser reads lab entries (Markdown with YAML frontmatter) and
// notebook manifests (notebook.yaml) from the vault.
package parser

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file holding a notebook's metadata inside its directory.
const ManifestName = "notebook.yaml"

var (
	tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

	// namespace for ids derived from vault paths.
	idNamespace = uuid.MustParse("6f1c2a4e-6c55-4c1e-9a57-2d3c3e1b8f10")
)

// Entry holds the output of parsing an entry file.
type Entry struct {
	Title     string
	Summary   string
	Body      string
	Tags      []string
	CreatedAt time.Time
}

// Notebook holds the output of parsing a notebook manifest.
type Notebook struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description,omitempty"`
	Color       string    `yaml:"color,omitempty"`
	CreatedAt   time.Time `yaml:"created,omitempty"`
}

type entryFrontmatter struct {
	Title   string    `yaml:"title"`
	Summary string    `yaml:"summary"`
	Tags    []string  `yaml:"tags"`
	Created time.Time `yaml:"created"`
}

// ParseEntry extracts frontmatter, body and tags from raw Markdown bytes.
// Invalid or missing frontmatter is not an error: the whole file becomes the
// body and the title falls back to the first H1 heading.
func ParseEntry(data []byte) (*Entry, error) {
	fm, body := splitFrontmatter(data)

	e := &Entry{
		Body:      body,
		Title:     strings.TrimSpace(fm.Title),
		Summary:   strings.TrimSpace(fm.Summary),
		CreatedAt: fm.Created,
	}
	if e.Title == "" {
		e.Title = firstHeading(body)
	}
	e.Tags = extractTags(body, fm.Tags)
	return e, nil
}

// ParseNotebook decodes a notebook manifest.
func ParseNotebook(data []byte) (*Notebook, error) {
	var nb Notebook
	if err := yaml.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parser: notebook manifest: %w", err)
	}
	nb.Title = strings.TrimSpace(nb.Title)
	return &nb, nil
}

// RenderEntry produces the canonical Markdown representation of an entry.
func RenderEntry(e Entry) ([]byte, error) {
	fm := entryFrontmatter{
		Title:   e.Title,
		Summary: e.Summary,
		Tags:    e.Tags,
		Created: e.CreatedAt.UTC(),
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("parser: render entry: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString(e.Body)
	if !strings.HasSuffix(e.Body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// RenderNotebook produces the manifest bytes for a notebook.
func RenderNotebook(nb Notebook) ([]byte, error) {
	nb.CreatedAt = nb.CreatedAt.UTC()
	data, err := yaml.Marshal(nb)
	if err != nil {
		return nil, fmt.Errorf("parser: render notebook: %w", err)
	}
	return data, nil
}

// ID derives a stable identifier from a vault-relative path.
func ID(rel string) string {
	return uuid.NewSHA1(idNamespace, []byte(path.Clean(toSlash(rel)))).String()
}

// NotebookDir returns the top-level directory an entry path belongs to, or
// "" for entries at the vault root.
func NotebookDir(rel string) string {
	rel = toSlash(rel)
	if i := strings.Index(rel, "/"); i > 0 {
		return rel[:i]
	}
	return ""
}

// IsEntryPath reports whether rel names an entry file.
func IsEntryPath(rel string) bool {
	return strings.HasSuffix(rel, ".md")
}

// IsManifestPath reports whether rel names a notebook manifest.
func IsManifestPath(rel string) bool {
	rel = toSlash(rel)
	dir, file := path.Split(rel)
	return file == ManifestName && dir != "" && strings.Count(dir, "/") == 1
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body.
func splitFrontmatter(data []byte) (entryFrontmatter, string) {
	const delim = "---"
	var fm entryFrontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return entryFrontmatter{}, string(data)
	}
	return fm, body
}

// extractTags merges frontmatter tags with inline #tags, preserving first
// occurrence order.
func extractTags(body string, declared []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range declared {
		add(t)
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
