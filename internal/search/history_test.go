package search

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type failingStore struct {
	loadErr error
	saves   int
}

func (f *failingStore) LoadHistory() ([]string, error) { return nil, f.loadErr }
func (f *failingStore) SaveHistory([]string) error {
	f.saves++
	return errors.New("quota exceeded")
}
func (f *failingStore) ClearHistory() error { return errors.New("storage unavailable") }

func TestHistory_Bounds(t *testing.T) {
	store := NewMemoryStore()
	h := NewHistory(store, DefaultHistoryLimit, quietLogger)

	for i := 1; i <= 15; i++ {
		h.Record(fmt.Sprintf("query %d", i))
	}

	items := h.Items()
	require.Len(t, items, 10)
	for i, q := range items {
		assert.Equal(t, fmt.Sprintf("query %d", 15-i), q)
	}

	persisted, err := store.LoadHistory()
	require.NoError(t, err)
	assert.Equal(t, items, persisted)
}

func TestHistory_Dedup(t *testing.T) {
	h := NewHistory(NewMemoryStore(), 0, quietLogger)
	h.Record("pcr")
	h.Record("gel")
	h.Record("pcr")
	assert.Equal(t, []string{"pcr", "gel"}, h.Items())
}

func TestHistory_IgnoresBlank(t *testing.T) {
	h := NewHistory(nil, 0, quietLogger)
	assert.False(t, h.Record(""))
	assert.False(t, h.Record("   "))
	assert.Empty(t, h.Items())
}

func TestHistory_KeepsRawQuery(t *testing.T) {
	h := NewHistory(nil, 0, quietLogger)
	h.Record(" pcr ")
	h.Record("pcr")
	assert.Equal(t, []string{"pcr", " pcr "}, h.Items())
}

func TestHistory_LoadsAndSanitizes(t *testing.T) {
	store := NewMemoryStore("a", "", "b", "a", "c")
	h := NewHistory(store, 2, quietLogger)
	assert.Equal(t, []string{"a", "b"}, h.Items())
}

func TestHistory_LoadFailureStartsEmpty(t *testing.T) {
	h := NewHistory(&failingStore{loadErr: errors.New("corrupt")}, 0, quietLogger)
	assert.Empty(t, h.Items())
}

func TestHistory_WriteFailureKeepsMemory(t *testing.T) {
	store := &failingStore{}
	h := NewHistory(store, 0, quietLogger)

	assert.True(t, h.Record("western blot"))
	assert.Equal(t, []string{"western blot"}, h.Items())
	assert.Equal(t, 1, store.saves)

	assert.NotPanics(t, h.Clear)
	assert.Empty(t, h.Items())
}

func TestHistory_Clear(t *testing.T) {
	store := NewMemoryStore("x", "y")
	h := NewHistory(store, 0, quietLogger)
	h.Clear()

	assert.Empty(t, h.Items())
	persisted, _ := store.LoadHistory()
	assert.Empty(t, persisted)
}

func TestHistory_ItemsIsCopy(t *testing.T) {
	h := NewHistory(nil, 0, quietLogger)
	h.Record("a")
	items := h.Items()
	items[0] = "mutated"
	assert.Equal(t, []string{"a"}, h.Items())
}
