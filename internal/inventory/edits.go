package inventory

import (
	"sort"
	"strings"

	"scentlog/internal/record"
)

// Normalize converts raw edit text into a field value. Blank text, and
// numeric text that does not coerce to a finite number, yield ok=false so the
// edit leaves the record untouched.
func Normalize(field, raw string) (record.Value, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return record.Value{}, false
	}
	switch field {
	case record.FieldRating:
		f, ok := record.ParseRating(trimmed)
		if !ok {
			return record.Value{}, false
		}
		return record.Number(f), true
	case record.FieldPrice:
		f, ok := record.ParsePrice(trimmed)
		if !ok {
			return record.Value{}, false
		}
		return record.Number(f), true
	}
	return record.Text(trimmed), true
}

// Edits holds staged field overrides keyed by lenient identity. Records that
// share a lenient key receive the same overrides.
type Edits struct {
	overrides map[string]map[string]string
}

// NewEdits returns an empty edit set.
func NewEdits() *Edits {
	return &Edits{overrides: make(map[string]map[string]string)}
}

// Stage records raw as the pending value of field for the record with key.
func (e *Edits) Stage(key, field, raw string) {
	if e.overrides == nil {
		e.overrides = make(map[string]map[string]string)
	}
	fields, ok := e.overrides[key]
	if !ok {
		fields = make(map[string]string)
		e.overrides[key] = fields
	}
	fields[field] = raw
}

// StageRecord stages an edit for r.
func (e *Edits) StageRecord(r record.Record, field, raw string) {
	e.Stage(record.LenientIdentity(r), field, raw)
}

// StageBulk stages raw for field on every record grouped under entryKey and
// returns how many records were staged. Blank values stage nothing.
func (e *Edits) StageBulk(records []record.Record, field, entryKey, raw string) int {
	if strings.TrimSpace(raw) == "" {
		return 0
	}
	members := Members(records, field, entryKey)
	for _, r := range members {
		e.StageRecord(r, field, raw)
	}
	return len(members)
}

// Pending returns the staged raw value for key and field.
func (e *Edits) Pending(key, field string) (string, bool) {
	raw, ok := e.overrides[key][field]
	return raw, ok
}

// Len returns the number of records with staged edits.
func (e *Edits) Len() int {
	return len(e.overrides)
}

// Keys lists staged record keys in sorted order.
func (e *Edits) Keys() []string {
	keys := make([]string, 0, len(e.overrides))
	for k := range e.overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyStats summarizes an Apply call.
type ApplyStats struct {
	// Records counts records that received at least one value.
	Records int
	// Fields counts field values written.
	Fields int
	// Ignored counts staged values that normalized to nothing.
	Ignored int
}

// Apply writes the staged overrides onto a copy of records. Only fields with
// a normalized staged value change.
func (e *Edits) Apply(records []record.Record) ([]record.Record, ApplyStats) {
	var stats ApplyStats
	out := make([]record.Record, len(records))
	for i, r := range records {
		fields, ok := e.overrides[record.LenientIdentity(r)]
		if !ok {
			out[i] = r
			continue
		}
		updated := r.Clone()
		changed := false
		for _, field := range sortedKeys(fields) {
			v, ok := Normalize(field, fields[field])
			if !ok {
				stats.Ignored++
				continue
			}
			updated.Set(field, v)
			stats.Fields++
			changed = true
		}
		if changed {
			stats.Records++
			out[i] = updated
		} else {
			out[i] = r
		}
	}
	return out, stats
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
