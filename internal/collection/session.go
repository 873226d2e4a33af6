// Package collection owns the canonical perfume collection for one
// application session: loading or bootstrapping it, applying imports and
// field repairs, and persisting every mutation before it becomes visible.
package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"scentlog/internal/csvio"
	"scentlog/internal/logging"
	"scentlog/internal/merge"
	"scentlog/internal/record"
	"scentlog/internal/store"
)

var (
	// ErrNotLoaded is returned by operations on a session whose initial load
	// has not completed.
	ErrNotLoaded = errors.New("collection: not loaded")
	// ErrNothingToImport is returned when the input yields no records.
	ErrNothingToImport = errors.New("collection: no perfumes found in input")
)

// Journal kinds.
const (
	KindBootstrap       = "bootstrap"
	KindImportMerge     = "import-merge"
	KindImportOverwrite = "import-overwrite"
	KindRepair          = "repair"
)

// Origin says where the session's initial collection came from.
type Origin string

const (
	OriginStore   Origin = "store"
	OriginDataset Origin = "dataset"
	OriginEmpty   Origin = "empty"
)

// Store persists the collection.
type Store interface {
	LoadCollection(ctx context.Context) ([]record.Record, bool, error)
	SaveCollection(ctx context.Context, records []record.Record) error
	AppendJournal(ctx context.Context, entry store.JournalEntry) (store.JournalEntry, error)
	WithWriteLock(ctx context.Context, fn func(context.Context) error) error
}

// Dataset provides the bootstrap CSV. An empty string means none.
type Dataset interface {
	Default(ctx context.Context) string
}

// Options configures Open.
type Options struct {
	Dataset Dataset
	Logger  *slog.Logger
}

// Session holds the committed collection. Readers get snapshots; mutations
// replace the slice wholesale.
type Session struct {
	store  Store
	logger *slog.Logger

	// writeMu serializes read-compute-commit cycles.
	writeMu sync.Mutex
	mu      sync.RWMutex
	records []record.Record
	loaded  bool
	origin  Origin
}

// Open loads the persisted collection, bootstrapping from the dataset when
// the slot is absent or empty.
func Open(ctx context.Context, st Store, opts Options) (*Session, error) {
	if st == nil {
		return nil, errors.New("collection: store is required")
	}
	s := &Session{
		store:  st,
		logger: logging.NewComponentLogger(opts.Logger, "collection"),
	}
	if err := s.load(ctx, opts.Dataset); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(ctx context.Context, ds Dataset) error {
	logger := logging.WithContext(ctx, s.logger)
	records, ok, err := s.store.LoadCollection(ctx)
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	if ok {
		s.install(records, OriginStore)
		logger.Debug("collection loaded", slog.Int("records", len(records)))
		return nil
	}

	if ds == nil {
		s.install(nil, OriginEmpty)
		return nil
	}
	text := ds.Default(ctx)
	parsed := csvio.Parse(text)
	result := merge.Merge(nil, parsed.Records)
	if len(result.Records) == 0 {
		s.install(nil, OriginEmpty)
		logger.Info("collection starts empty")
		return nil
	}

	entry := store.JournalEntry{
		Kind:      KindBootstrap,
		Added:     result.Added,
		Collapsed: result.Collapsed,
		Skipped:   result.Skipped,
		Total:     len(result.Records),
	}
	if err := s.persist(ctx, result.Records, entry); err != nil {
		logging.WarnWithContext(logger, "bootstrap collection not persisted", "bootstrap_persist_failed",
			logging.Error(err),
			slog.String(logging.FieldImpact, "default dataset will be fetched again next start"),
		)
	}
	s.install(result.Records, OriginDataset)
	logger.Info("collection bootstrapped", slog.Int("records", len(result.Records)))
	return nil
}

func (s *Session) install(records []record.Record, origin Origin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.loaded = true
	s.origin = origin
}

// Loaded reports whether the initial load completed.
func (s *Session) Loaded() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Origin reports where the initial collection came from.
func (s *Session) Origin() Origin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin
}

// Snapshot returns the committed collection. The slice is shared with other
// readers and must not be modified.
func (s *Session) Snapshot() ([]record.Record, error) {
	if s == nil {
		return nil, ErrNotLoaded
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return s.records, nil
}

// Records returns a copy of the committed collection.
func (s *Session) Records() ([]record.Record, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, len(snap))
	for i, r := range snap {
		out[i] = r.Clone()
	}
	return out, nil
}

// Find returns every record whose lenient identity equals key.
func (s *Session) Find(key string) ([]record.Record, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	var out []record.Record
	for _, r := range snap {
		if record.LenientIdentity(r) == key {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// ImportOptions configures ImportReader.
type ImportOptions struct {
	Encoding string
	// Source is recorded in the journal detail.
	Source string
}

// Import parses text and applies it with mode.
func (s *Session) Import(ctx context.Context, text string, mode merge.Mode) (ImportResult, error) {
	return s.apply(ctx, csvio.Parse(text), mode, "")
}

// ImportReader decodes and parses r, then applies it with mode.
func (s *Session) ImportReader(ctx context.Context, r io.Reader, mode merge.Mode, opts ImportOptions) (ImportResult, error) {
	parsed, err := csvio.ParseReader(r, csvio.Options{Encoding: opts.Encoding})
	if err != nil {
		return ImportResult{}, err
	}
	return s.apply(ctx, parsed, mode, opts.Source)
}

func (s *Session) apply(ctx context.Context, parsed csvio.Result, mode merge.Mode, source string) (ImportResult, error) {
	if mode != merge.ModeOverwrite {
		mode = merge.ModeMerge
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.Snapshot()
	if err != nil {
		return ImportResult{}, err
	}
	result := ImportResult{Mode: mode, Rejected: parsed.Rejected}
	if len(parsed.Records) == 0 {
		return result, ErrNothingToImport
	}

	merged := merge.Apply(mode, current, parsed.Records)
	result.Added = merged.Added
	result.Updated = merged.Updated
	result.Collapsed = merged.Collapsed
	result.Skipped = merged.Skipped
	result.Dropped = merged.Dropped
	result.Total = len(merged.Records)

	kind := KindImportMerge
	if mode == merge.ModeOverwrite {
		kind = KindImportOverwrite
	}
	entry := store.JournalEntry{
		Kind:      kind,
		Added:     result.Added,
		Updated:   result.Updated,
		Collapsed: result.Collapsed,
		Skipped:   result.Skipped,
		Total:     result.Total,
		Detail:    source,
	}
	if err := s.commit(ctx, merged.Records, entry); err != nil {
		return ImportResult{}, err
	}
	logging.WithContext(ctx, s.logger).Info("import committed",
		slog.String("mode", string(mode)),
		slog.Int("added", result.Added),
		slog.Int("updated", result.Updated),
		slog.Int("collapsed", result.Collapsed),
		slog.Int("skipped", result.Skipped),
		slog.Int("rejected", len(result.Rejected)),
		slog.Int("total", result.Total),
	)
	return result, nil
}

// commit persists next and only then makes it the visible collection.
func (s *Session) commit(ctx context.Context, next []record.Record, entry store.JournalEntry) error {
	if err := s.persist(ctx, next, entry); err != nil {
		return err
	}
	s.mu.Lock()
	s.records = next
	s.mu.Unlock()
	return nil
}

func (s *Session) persist(ctx context.Context, next []record.Record, entry store.JournalEntry) error {
	return s.store.WithWriteLock(ctx, func(ctx context.Context) error {
		if err := s.store.SaveCollection(ctx, next); err != nil {
			return fmt.Errorf("persist collection: %w", err)
		}
		if _, err := s.store.AppendJournal(ctx, entry); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "journal entry not recorded", "journal_append_failed",
				slog.String("kind", entry.Kind),
				logging.Error(err),
				slog.String(logging.FieldImpact, "mutation saved without a journal entry"),
			)
		}
		return nil
	})
}
