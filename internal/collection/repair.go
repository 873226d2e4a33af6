package collection

import (
	"context"
	"log/slog"

	"scentlog/internal/inventory"
	"scentlog/internal/logging"
	"scentlog/internal/store"
)

// SaveRepairs applies staged field edits and persists the result. A batch
// that changes nothing is not written.
func (s *Session) SaveRepairs(ctx context.Context, edits *inventory.Edits) (RepairResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.Snapshot()
	if err != nil {
		return RepairResult{}, err
	}
	if edits == nil || edits.Len() == 0 {
		return RepairResult{}, nil
	}

	next, stats := edits.Apply(current)
	result := RepairResult{Records: stats.Records, Fields: stats.Fields, Ignored: stats.Ignored}
	if stats.Fields == 0 {
		return result, nil
	}
	entry := store.JournalEntry{
		Kind:    KindRepair,
		Updated: stats.Records,
		Total:   len(next),
	}
	if err := s.commit(ctx, next, entry); err != nil {
		return RepairResult{}, err
	}
	logging.WithContext(ctx, s.logger).Info("field repairs committed",
		slog.Int("records", stats.Records),
		slog.Int("fields", stats.Fields),
		slog.Int("ignored", stats.Ignored),
	)
	return result, nil
}
