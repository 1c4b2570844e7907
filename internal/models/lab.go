// Package models defines the domain types for labnote.
package models

import "time"

// Entry is a lab note stored as a Markdown file in a notebook directory.
type Entry struct {
	ID            string    `json:"id"`
	Path          string    `json:"path"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Summary       string    `json:"summary,omitempty"`
	NotebookID    string    `json:"notebook_id,omitempty"`
	NotebookTitle string    `json:"notebook_title,omitempty"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasSummary reports whether the entry carries a non-empty summary.
func (e Entry) HasSummary() bool {
	return e.Summary != ""
}

// Notebook groups entries. It maps to a top-level vault directory.
type Notebook struct {
	ID          string    `json:"id"`
	Dir         string    `json:"dir"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FileMetadata is a lightweight view of a vault file returned by listings.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
