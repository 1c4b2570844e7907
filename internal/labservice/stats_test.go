package labservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/labnote/internal/apperr"
)

func tagNames(stats []TagStat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Name
	}
	return out
}

func TestTagStats_Sorting(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.svc.CreateEntry(ctx, EntryInput{Title: "Second gel", Tags: []string{"gel"}})
	require.NoError(t, err)

	byCount, err := e.svc.TagStats(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "gel", byCount[0].Name)
	assert.Equal(t, 2, byCount[0].Count)
	assert.Len(t, byCount[0].EntryIDs, 2)

	byName, err := e.svc.TagStats(ctx, SortByName, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"gel", "genetics", "pcr"}, tagNames(byName))

	byRecent, err := e.svc.TagStats(ctx, SortByRecent, "")
	require.NoError(t, err)
	assert.Equal(t, "gel", byRecent[0].Name)
	assert.True(t, byRecent[0].LastUsed.Equal(fixedNow))

	_, err = e.svc.TagStats(ctx, "popularity", "")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestTagStats_Filter(t *testing.T) {
	e := newEnv(t)
	stats, err := e.svc.TagStats(context.Background(), SortByName, "GE")
	require.NoError(t, err)
	assert.Equal(t, []string{"gel", "genetics"}, tagNames(stats))
	assert.Regexp(t, `^hsl\(\d+, 60%, 85%\)$`, stats[0].Color)
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	st := e.svc.Stats(context.Background())
	assert.Equal(t, Stats{TotalEntries: 3, ActiveProjects: 1, ThisWeek: 2, LabTime: "8h"}, st)
}

func TestExport(t *testing.T) {
	e := newEnv(t)
	doc := e.svc.Export(context.Background())
	assert.Len(t, doc.Entries, 3)
	assert.Len(t, doc.Notebooks, 1)
	assert.Equal(t, "2024-03-18T09:00:00Z", doc.ExportDate)
	assert.Equal(t, "labnotes-export-2024-03-18.json", ExportFileName(fixedNow))
}
