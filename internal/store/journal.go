package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JournalEntry records one committed collection mutation.
type JournalEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Added     int       `json:"added"`
	Updated   int       `json:"updated"`
	Collapsed int       `json:"collapsed"`
	Skipped   int       `json:"skipped"`
	Total     int       `json:"total"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AppendJournal stores entry, assigning an ID and timestamp when unset.
func (s *Store) AppendJournal(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	_, err := s.execWithRetry(ctx,
		`INSERT INTO import_journal (id, kind, added, updated, collapsed, skipped, total, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Kind, entry.Added, entry.Updated, entry.Collapsed, entry.Skipped, entry.Total,
		entry.Detail, entry.CreatedAt.Format(timestampLayout),
	)
	if err != nil {
		return JournalEntry{}, fmt.Errorf("append journal: %w", err)
	}
	return entry, nil
}

// ListJournal returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) ListJournal(ctx context.Context, limit int) ([]JournalEntry, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, kind, added, updated, collapsed, skipped, total, detail, created_at
		FROM import_journal ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var (
			e       JournalEntry
			created string
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Added, &e.Updated, &e.Collapsed, &e.Skipped, &e.Total, &e.Detail, &created); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.CreatedAt = parseTime(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
