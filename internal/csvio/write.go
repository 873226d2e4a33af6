package csvio

import (
	"io"
	"strings"

	"scentlog/internal/record"
)

// Escape quotes s, doubling inner quotes, iff it contains a comma, a double
// quote or a newline.
func Escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Serialize renders records as CSV text. The header uses display labels and
// rows are joined with "\n" without a trailing newline. An empty collection
// serializes to the empty string.
func Serialize(records []record.Record) string {
	if len(records) == 0 {
		return ""
	}
	fields := record.FieldSet(records)

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(record.Label(field)))
	}
	for _, rec := range records {
		b.WriteByte('\n')
		for i, field := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			if v, ok := rec.Get(field); ok {
				b.WriteString(Escape(v.String()))
			}
		}
	}
	return b.String()
}

// Write serializes records to w.
func Write(w io.Writer, records []record.Record) error {
	_, err := io.WriteString(w, Serialize(records))
	return err
}
