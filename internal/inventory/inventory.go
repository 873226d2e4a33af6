// Package inventory classifies missing field values across a collection and
// stages repairs for them.
package inventory

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"scentlog/internal/record"
)

// Reserved entry bucket for missing values.
const (
	EmptyKey   = "__MISSING__"
	EmptyLabel = "(empty)"
)

// Fields returns the inventory of field names present in records.
func Fields(records []record.Record) []string {
	return record.FieldSet(records)
}

// IsMissing reports whether field is absent on r or holds blank text.
// Numeric zero is not missing.
func IsMissing(r record.Record, field string) bool {
	v, ok := r.Get(field)
	return !ok || v.Missing()
}

// Scope returns the fields to inspect: the selected field alone, or every
// inventory field when selected is empty.
func Scope(fields []string, selected string) []string {
	if selected != "" {
		return []string{selected}
	}
	return fields
}

// MissingFields lists the fields of scope that are missing on r.
func MissingFields(r record.Record, scope []string) []string {
	var out []string
	for _, field := range scope {
		if IsMissing(r, field) {
			out = append(out, field)
		}
	}
	return out
}

// Attention is a record that has at least one missing field in scope.
type Attention struct {
	Index   int
	Key     string
	Record  record.Record
	Missing []string
}

// NeedingAttention returns the records with a non-empty missing-field list
// under scope, in collection order.
func NeedingAttention(records []record.Record, scope []string) []Attention {
	var out []Attention
	for i, r := range records {
		missing := MissingFields(r, scope)
		if len(missing) == 0 {
			continue
		}
		out = append(out, Attention{
			Index:   i,
			Key:     record.LenientIdentity(r),
			Record:  r,
			Missing: missing,
		})
	}
	return out
}

// Entry is a group of records sharing one raw value for a field.
type Entry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// EntryKey returns the group key of r under field.
func EntryKey(r record.Record, field string) string {
	v, ok := r.Get(field)
	if !ok || v.Missing() {
		return EmptyKey
	}
	return v.String()
}

// Entries groups records by their value under field. The empty bucket sorts
// first, the rest by label in English collation order.
func Entries(records []record.Record, field string) []Entry {
	return EntriesFor(language.English, records, field)
}

// EntriesFor is Entries with an explicit collation language.
func EntriesFor(tag language.Tag, records []record.Record, field string) []Entry {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		key := EntryKey(r, field)
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	entries := make([]Entry, 0, len(order))
	for _, key := range order {
		label := key
		if key == EmptyKey {
			label = EmptyLabel
		}
		entries = append(entries, Entry{Key: key, Label: label, Count: counts[key]})
	}

	col := collate.New(tag)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.Key == EmptyKey) != (b.Key == EmptyKey) {
			return a.Key == EmptyKey
		}
		return col.CompareString(a.Label, b.Label) < 0
	})
	return entries
}

// Members returns the records grouped under key for field.
func Members(records []record.Record, field, key string) []record.Record {
	var out []record.Record
	for _, r := range records {
		if EntryKey(r, field) == key {
			out = append(out, r)
		}
	}
	return out
}
