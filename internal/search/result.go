package search

// Kind identifies which record a Result points at.
type Kind string

const (
	KindEntry    Kind = "entry"
	KindNotebook Kind = "notebook"
	KindTag      Kind = "tag"
)

// ParseKind validates s as a Kind. The empty string is accepted and means
// "all kinds".
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case "", KindEntry, KindNotebook, KindTag:
		return k, true
	default:
		return "", false
	}
}

// Metadata is the kind-specific part of a Result. The concrete type is always
// one of EntryMeta, NotebookMeta or TagMeta and matches Result.Kind.
type Metadata interface {
	Kind() Kind
}

// EntryMeta is attached to entry results.
type EntryMeta struct {
	Date    string   `json:"date"`
	Project string   `json:"project"`
	Tags    []string `json:"tags"`
}

// Kind implements Metadata.
func (EntryMeta) Kind() Kind { return KindEntry }

// NotebookMeta is attached to notebook results.
type NotebookMeta struct {
	Date       string `json:"date"`
	EntryCount int    `json:"entry_count"`
}

// Kind implements Metadata.
func (NotebookMeta) Kind() Kind { return KindNotebook }

// TagMeta is attached to tag results.
type TagMeta struct {
	EntryCount int `json:"entry_count"`
}

// Kind implements Metadata.
func (TagMeta) Kind() Kind { return KindTag }

// Result is one ranked hit.
type Result struct {
	ID                 string   `json:"id"`
	Kind               Kind     `json:"type"`
	Title              string   `json:"title"`
	Content            string   `json:"content"`
	URL                string   `json:"url"`
	Score              int      `json:"relevance_score"`
	HighlightedTitle   string   `json:"highlighted_title,omitempty"`
	HighlightedContent string   `json:"highlighted_content,omitempty"`
	Metadata           Metadata `json:"metadata,omitempty"`
}

// FilterKind returns the results of the given kind, preserving order.
// An empty kind returns results unchanged.
func FilterKind(results []Result, kind Kind) []Result {
	if kind == "" {
		return results
	}
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Groups counts results per kind.
type Groups struct {
	Entries   int `json:"entries"`
	Notebooks int `json:"notebooks"`
	Tags      int `json:"tags"`
}

// GroupCounts tallies results by kind.
func GroupCounts(results []Result) Groups {
	var g Groups
	for _, r := range results {
		switch r.Kind {
		case KindEntry:
			g.Entries++
		case KindNotebook:
			g.Notebooks++
		case KindTag:
			g.Tags++
		}
	}
	return g
}
