package labservice

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/starford/labnote/internal/apperr"
	"github.com/starford/labnote/internal/models"
)

// Tag sort orders accepted by TagStats.
const (
	SortByCount  = "count"
	SortByName   = "name"
	SortByRecent = "recent"
)

// hoursPerEntry is the lab time credited per entry in Stats.
const hoursPerEntry = 2.5

// TagStat summarizes one tag's usage.
type TagStat struct {
	Name     string    `json:"name"`
	Count    int       `json:"count"`
	LastUsed time.Time `json:"last_used"`
	Color    string    `json:"color"`
	EntryIDs []string  `json:"entry_ids"`
}

// Stats are the dashboard counters.
type Stats struct {
	TotalEntries   int    `json:"total_entries"`
	ActiveProjects int    `json:"active_projects"`
	ThisWeek       int    `json:"this_week"`
	LabTime        string `json:"lab_time"`
}

// ExportDocument is the JSON export of the whole lab.
type ExportDocument struct {
	Entries    []models.Entry    `json:"entries"`
	Notebooks  []models.Notebook `json:"notebooks"`
	ExportDate string            `json:"exportDate"`
}

// TagStats aggregates tag usage across entries. filter keeps tags whose
// name contains it case-insensitively. sortBy is one of count (default),
// name or recent.
func (s *Service) TagStats(_ context.Context, sortBy, filter string) ([]TagStat, error) {
	var less func(a, b TagStat) bool
	switch sortBy {
	case "", SortByCount:
		less = func(a, b TagStat) bool { return a.Count > b.Count }
	case SortByName:
		less = func(a, b TagStat) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortByRecent:
		less = func(a, b TagStat) bool { return a.LastUsed.After(b.LastUsed) }
	default:
		return nil, fmt.Errorf("%w: unknown tag sort %q", apperr.ErrInvalid, sortBy)
	}

	needle := strings.ToLower(filter)
	byName := make(map[string]int)
	out := []TagStat{}
	for _, e := range s.Snapshot().Entries {
		for _, tag := range e.Tags {
			if !strings.Contains(strings.ToLower(tag), needle) {
				continue
			}
			i, ok := byName[tag]
			if !ok {
				i = len(out)
				byName[tag] = i
				out = append(out, TagStat{Name: tag, Color: tagColor(tag), EntryIDs: []string{}})
			}
			st := &out[i]
			st.Count++
			st.EntryIDs = append(st.EntryIDs, e.ID)
			if e.CreatedAt.After(st.LastUsed) {
				st.LastUsed = e.CreatedAt
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

// tagColor derives a stable pastel color from the tag name.
func tagColor(tag string) string {
	sum := 0
	for _, r := range tag {
		sum += int(r)
	}
	return fmt.Sprintf("hsl(%d, 60%%, 85%%)", sum%360)
}

// Stats computes the dashboard counters from the current snapshot.
func (s *Service) Stats(_ context.Context) Stats {
	snap := s.Snapshot()
	weekAgo := s.now().AddDate(0, 0, -7)
	thisWeek := 0
	for _, e := range snap.Entries {
		if !e.CreatedAt.Before(weekAgo) {
			thisWeek++
		}
	}
	total := len(snap.Entries)
	return Stats{
		TotalEntries:   total,
		ActiveProjects: len(snap.Notebooks),
		ThisWeek:       thisWeek,
		LabTime:        fmt.Sprintf("%dh", int(math.Round(float64(total)*hoursPerEntry))),
	}
}

// Export returns every entry and notebook with the export timestamp.
func (s *Service) Export(_ context.Context) ExportDocument {
	snap := s.Snapshot()
	entries := snap.Entries
	if entries == nil {
		entries = []models.Entry{}
	}
	notebooks := snap.Notebooks
	if notebooks == nil {
		notebooks = []models.Notebook{}
	}
	return ExportDocument{
		Entries:    entries,
		Notebooks:  notebooks,
		ExportDate: s.now().UTC().Format(time.RFC3339),
	}
}

// ExportFileName is the suggested file name for an export taken at t.
func ExportFileName(t time.Time) string {
	return "labnotes-export-" + t.UTC().Format("2006-01-02") + ".json"
}
