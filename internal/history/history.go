// Package history persists the decision log of review runs, either as a
// JSON-lines file or in PostgreSQL.
package history

import (
	"context"
	"time"

	"locmerge/internal/review"
)

// Entry is a stored decision.
type Entry struct {
	review.Record
	WorkFile string    `json:"work_file"`
	At       time.Time `json:"at"`
}

// Store appends and lists decision log entries.
type Store interface {
	Append(ctx context.Context, entries []Entry) error
	List(ctx context.Context) ([]Entry, error)
	Close()
}

// Entries stamps review records for storage.
func Entries(workFile string, records []review.Record, at time.Time) []Entry {
	entries := make([]Entry, len(records))
	for i, r := range records {
		entries[i] = Entry{Record: r, WorkFile: workFile, At: at.UTC()}
	}
	return entries
}

// Open returns a PostgreSQL store when databaseURL is set, and a file store
// at path otherwise.
func Open(ctx context.Context, databaseURL, path string) (Store, error) {
	if databaseURL != "" {
		return NewPGStore(ctx, databaseURL)
	}
	return NewFileStore(path), nil
}
