// Package library keeps the files a user chose to save, in the configured
// storage backend, and lists them as the user's history.
package library

import (
	"errors"
	"time"
)

// ErrNotFound is returned for unknown saved files.
var ErrNotFound = errors.New("library: saved file not found")

// SavedFile is one entry of a user's library.
type SavedFile struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Filename   string    `json:"filename"`
	Folder     string    `json:"folder"`
	StorageKey string    `json:"storage_key"`
	Backend    string    `json:"backend"`
	Location   string    `json:"location,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	PageCount  int       `json:"page_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryItem is a SavedFile with human readable size and age.
type HistoryItem struct {
	SavedFile
	Size  string `json:"size"`
	Saved string `json:"saved"`
}

// parseTime accepts both SQLite's datetime() text and RFC 3339.
func parseTime(ts string) time.Time {
	if t, err := time.Parse(time.DateTime, ts); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	return time.Time{}
}
