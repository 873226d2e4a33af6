package view

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"scentlog/internal/record"
)

const segmentFieldName = "market segment"

// NormalizeFieldName lower-cases a field name and collapses whitespace runs.
func NormalizeFieldName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// DetectSegmentField returns the first additional field, in collection order,
// whose normalized name is "market segment". It returns "" when none exists.
func DetectSegmentField(records []record.Record) string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, e := range r.Extras() {
			if _, ok := seen[e.Key]; ok {
				continue
			}
			seen[e.Key] = struct{}{}
			if NormalizeFieldName(e.Key) == segmentFieldName {
				return e.Key
			}
		}
	}
	return ""
}

// BrandOptions lists the distinct non-empty brands in collation order.
func BrandOptions(tag language.Tag, records []record.Record) []string {
	values := make(map[string]struct{})
	for _, r := range records {
		if r.Brand != "" {
			values[r.Brand] = struct{}{}
		}
	}
	return sortedOptions(tag, values)
}

// SegmentOptions lists the distinct non-empty values of the segment field.
func SegmentOptions(tag language.Tag, records []record.Record, segmentField string) []string {
	if segmentField == "" {
		return nil
	}
	values := make(map[string]struct{})
	for _, r := range records {
		if v, ok := r.Extra(segmentField); ok && v != "" {
			values[v] = struct{}{}
		}
	}
	return sortedOptions(tag, values)
}

func sortedOptions(tag language.Tag, values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	// Pre-sort so ties under collation stay deterministic.
	sort.Strings(out)
	col := collate.New(tag)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i], out[j]) < 0
	})
	return out
}
