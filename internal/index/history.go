package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// historyKey is the settings row holding the committed-query history.
const historyKey = "lab-search-history"

// LoadHistory returns the persisted search history. A missing row yields an
// empty list; a malformed row yields an error.
func (db *DB) LoadHistory() ([]string, error) {
	var raw string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, historyKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: load history: %w", err)
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("index: decode history: %w", err)
	}
	return items, nil
}

// SaveHistory replaces the persisted search history.
func (db *DB) SaveHistory(items []string) error {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("index: encode history: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, historyKey, string(raw))
	if err != nil {
		return fmt.Errorf("index: save history: %w", err)
	}
	return nil
}

// ClearHistory removes the persisted search history.
func (db *DB) ClearHistory() error {
	if _, err := db.conn.Exec(`DELETE FROM settings WHERE key = ?`, historyKey); err != nil {
		return fmt.Errorf("index: clear history: %w", err)
	}
	return nil
}
