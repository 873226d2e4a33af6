package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scentlog/internal/record"
)

// CollectionSlot is the slot holding the canonical collection.
const CollectionSlot = "my_perfume_collection"

// SlotInfo describes a stored slot without its payload.
type SlotInfo struct {
	Name        string
	RecordCount int
	UpdatedAt   time.Time
}

// LoadSlot returns the raw payload stored under name. ok is false when the
// slot has never been written.
func (s *Store) LoadSlot(ctx context.Context, name string) ([]byte, bool, error) {
	ctx = ensureContext(ctx)
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM collection_slots WHERE name = ?", name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load slot %s: %w", name, err)
	}
	return []byte(payload), true, nil
}

// SaveSlot replaces the payload stored under name.
func (s *Store) SaveSlot(ctx context.Context, name string, payload []byte, count int) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO collection_slots (name, payload, record_count, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, record_count = excluded.record_count, updated_at = excluded.updated_at`,
		name, string(payload), count, time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", name, err)
	}
	return nil
}

// SlotInfo returns metadata for name.
func (s *Store) SlotInfo(ctx context.Context, name string) (SlotInfo, bool, error) {
	ctx = ensureContext(ctx)
	var (
		info    SlotInfo
		updated string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT name, record_count, updated_at FROM collection_slots WHERE name = ?", name,
	).Scan(&info.Name, &info.RecordCount, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return SlotInfo{}, false, nil
	}
	if err != nil {
		return SlotInfo{}, false, fmt.Errorf("slot info %s: %w", name, err)
	}
	info.UpdatedAt = parseTime(updated)
	return info, true, nil
}

// LoadCollection reads the canonical collection. An absent slot, or one
// holding an empty array, yields a nil slice and ok=false.
func (s *Store) LoadCollection(ctx context.Context) ([]record.Record, bool, error) {
	payload, ok, err := s.LoadSlot(ctx, CollectionSlot)
	if err != nil || !ok {
		return nil, false, err
	}
	var records []record.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false, fmt.Errorf("decode collection: %w", err)
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records, true, nil
}

// SaveCollection replaces the canonical collection.
func (s *Store) SaveCollection(ctx context.Context, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	return s.SaveSlot(ctx, CollectionSlot, payload, len(records))
}

// timestampLayout is fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func parseTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
