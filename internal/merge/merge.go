// Package merge reconciles imported records with the canonical collection.
//
// Both operations are pure: they take the collection as an argument and
// return a new slice, leaving their inputs untouched.
package merge

import "scentlog/internal/record"

// Mode selects how an import is applied.
type Mode string

const (
	// ModeMerge folds incoming records into the existing collection by identity.
	ModeMerge Mode = "merge"
	// ModeOverwrite replaces the collection with the valid incoming records.
	ModeOverwrite Mode = "overwrite"
)

// Result reports the new collection and how each incoming record was handled.
type Result struct {
	Records []record.Record
	// Added counts incoming records inserted as new entries.
	Added int
	// Updated counts incoming records folded into a pre-existing entry.
	Updated int
	// Collapsed counts incoming records folded into an entry created earlier
	// in the same batch.
	Collapsed int
	// Skipped counts incoming records that resolved no identity (merge) or
	// lacked a brand or name (overwrite).
	Skipped int
	// Dropped counts existing entries without an identity; they cannot be
	// keyed and do not survive a merge.
	Dropped int
}

// Apply dispatches to Merge or Overwrite.
func Apply(mode Mode, existing, incoming []record.Record) Result {
	if mode == ModeOverwrite {
		return Overwrite(incoming)
	}
	return Merge(existing, incoming)
}

// Overwrite keeps the incoming records with both brand and name, in order.
// Duplicates are not merged.
func Overwrite(incoming []record.Record) Result {
	out := make([]record.Record, 0, len(incoming))
	for _, rec := range incoming {
		if !rec.Valid() {
			continue
		}
		out = append(out, rec.Clone())
	}
	return Result{Records: out, Added: len(out), Skipped: len(incoming) - len(out)}
}

type slot struct {
	rec          record.Record
	fromExisting bool
}

// Merge folds incoming into existing keyed by strict identity. Existing
// duplicates resolve last-wins at the position of first occurrence. Each
// incoming record with a known key overlays that entry, including entries
// added earlier in the same batch; a valid record with a new key is appended
// and a record without identity is skipped.
func Merge(existing, incoming []record.Record) Result {
	var res Result
	index := make(map[string]int, len(existing)+len(incoming))
	slots := make([]slot, 0, len(existing)+len(incoming))

	for _, rec := range existing {
		key, ok := record.Identity(rec)
		if !ok {
			res.Dropped++
			continue
		}
		if i, seen := index[key]; seen {
			slots[i].rec = rec.Clone()
			continue
		}
		index[key] = len(slots)
		slots = append(slots, slot{rec: rec.Clone(), fromExisting: true})
	}

	for _, rec := range incoming {
		key, ok := record.Identity(rec)
		if !ok {
			res.Skipped++
			continue
		}
		if i, seen := index[key]; seen {
			slots[i].rec = slots[i].rec.Overlay(rec)
			if slots[i].fromExisting {
				res.Updated++
			} else {
				res.Collapsed++
			}
			continue
		}
		if !rec.Valid() {
			res.Skipped++
			continue
		}
		index[key] = len(slots)
		slots = append(slots, slot{rec: rec.Clone()})
		res.Added++
	}

	res.Records = make([]record.Record, len(slots))
	for i, s := range slots {
		res.Records[i] = s.rec
	}
	return res
}
