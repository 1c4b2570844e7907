package search

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/starford/labnote/internal/models"
)

const (
	defaultDateLayout      = "1/2/2006"
	defaultSnippetLength   = 200
	defaultSuggestionLimit = 5
	generalProject         = "General"
	noDescription          = "No description"
	ellipsis               = "..."
)

// Snapshot is the read-only corpus a search runs over.
type Snapshot struct {
	Entries   []models.Entry    `json:"entries"`
	Notebooks []models.Notebook `json:"notebooks"`
}

// Tags returns the distinct tags across all entries in first-seen order.
func (s Snapshot) Tags() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range s.Entries {
		for _, t := range e.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Options tunes presentation details of results and suggestions.
type Options struct {
	// DateLayout formats entry and notebook creation dates.
	DateLayout string
	// SnippetLength is how many characters of an entry body are shown when
	// the entry has no summary.
	SnippetLength int
	// SuggestionLimit caps the number of autocomplete suggestions.
	SuggestionLimit int
}

// DefaultOptions returns the stock presentation settings.
func DefaultOptions() Options {
	return Options{
		DateLayout:      defaultDateLayout,
		SnippetLength:   defaultSnippetLength,
		SuggestionLimit: defaultSuggestionLimit,
	}
}

func (o Options) withDefaults() Options {
	if o.DateLayout == "" {
		o.DateLayout = defaultDateLayout
	}
	if o.SnippetLength <= 0 {
		o.SnippetLength = defaultSnippetLength
	}
	if o.SuggestionLimit <= 0 {
		o.SuggestionLimit = defaultSuggestionLimit
	}
	return o
}

// Rank scores every entry, notebook and tag in snap against query and
// returns the matches ordered by descending score. Equal scores keep
// encounter order: entries, then notebooks, then tags. A blank query returns
// an empty slice.
func Rank(snap Snapshot, query string, opts Options) []Result {
	query = strings.TrimSpace(NormalizeQuery(query))
	if query == "" {
		return []Result{}
	}
	opts = opts.withDefaults()
	hl := newHighlighter(query)

	results := make([]Result, 0)

	for _, e := range snap.Entries {
		score := Score(entryText(e), query)
		if score <= 0 {
			continue
		}
		content := entryContent(e, opts.SnippetLength)
		project := e.NotebookTitle
		if project == "" {
			project = generalProject
		}
		results = append(results, Result{
			ID:                 e.ID,
			Kind:               KindEntry,
			Title:              e.Title,
			Content:            content,
			URL:                "/entries/" + e.ID,
			Score:              score,
			HighlightedTitle:   hl.apply(e.Title),
			HighlightedContent: hl.apply(content),
			Metadata: EntryMeta{
				Date:    e.CreatedAt.Local().Format(opts.DateLayout),
				Project: project,
				Tags:    nonNil(e.Tags),
			},
		})
	}

	if len(snap.Notebooks) > 0 {
		perNotebook := make(map[string]int, len(snap.Notebooks))
		for _, e := range snap.Entries {
			perNotebook[e.NotebookID]++
		}
		for _, nb := range snap.Notebooks {
			score := Score(nb.Title+" "+nb.Description, query)
			if score <= 0 {
				continue
			}
			content := nb.Description
			if content == "" {
				content = noDescription
			}
			results = append(results, Result{
				ID:                 nb.ID,
				Kind:               KindNotebook,
				Title:              nb.Title,
				Content:            content,
				URL:                "/notebooks/" + nb.ID,
				Score:              score + notebookBonus,
				HighlightedTitle:   hl.apply(nb.Title),
				HighlightedContent: hl.apply(content),
				Metadata: NotebookMeta{
					Date:       nb.CreatedAt.Local().Format(opts.DateLayout),
					EntryCount: perNotebook[nb.ID],
				},
			})
		}
	}

	if tags := snap.Tags(); len(tags) > 0 {
		usage := tagUsage(snap.Entries)
		for _, tag := range tags {
			score := Score(tag, query)
			if score <= 0 {
				continue
			}
			title := "#" + tag
			content := tagContent(usage[tag])
			results = append(results, Result{
				ID:                 tag,
				Kind:               KindTag,
				Title:              title,
				Content:            content,
				URL:                TagURL(tag),
				Score:              score,
				HighlightedTitle:   hl.apply(title),
				HighlightedContent: content,
				Metadata:           TagMeta{EntryCount: usage[tag]},
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// uriComponent undoes the QueryEscape encodings that encodeURIComponent
// leaves literal: space becomes %20 and !'()* stay as they are.
var uriComponent = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// TagURL is the navigation path for the tag browser filtered to tag. The tag
// is encoded the way browsers' encodeURIComponent does it.
func TagURL(tag string) string {
	return "/tags?filter=" + uriComponent.Replace(url.QueryEscape(tag))
}

// entryText is the haystack an entry is scored against.
func entryText(e models.Entry) string {
	return e.Title + " " + e.Content + " " + e.Summary + " " + strings.Join(e.Tags, " ")
}

// entryContent is the summary, or the leading part of the body followed by
// an ellipsis.
func entryContent(e models.Entry, n int) string {
	if e.HasSummary() {
		return e.Summary
	}
	return truncateRunes(e.Content, n) + ellipsis
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// tagUsage counts, per tag, the entries that carry it.
func tagUsage(entries []models.Entry) map[string]int {
	usage := make(map[string]int)
	for _, e := range entries {
		seen := make(map[string]struct{}, len(e.Tags))
		for _, t := range e.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			usage[t]++
		}
	}
	return usage
}

func tagContent(n int) string {
	noun := "entries"
	if n == 1 {
		noun = "entry"
	}
	return fmt.Sprintf("Tag used in %d %s", n, noun)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
