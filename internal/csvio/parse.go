package csvio

import (
	"fmt"
	"io"
	"strings"

	"scentlog/internal/record"
)

// Rejection describes a data row that did not produce a record.
type Rejection struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("line %d: %s", r.Line, r.Reason)
}

// Result is the outcome of parsing a CSV document. Records may contain
// duplicates and invalid entries; deduplication belongs to the merge engine.
type Result struct {
	Header   []string
	Records  []record.Record
	Rejected []Rejection
}

const reasonNoAlignedColumns = "no cells align with a named header column"

// Parse parses UTF-8 CSV text.
func Parse(text string) Result {
	table, err := ReadTable(strings.NewReader(strings.TrimPrefix(text, "\uFEFF")))
	if err != nil {
		// strings.Reader never fails.
		return Result{}
	}
	return FromTable(table)
}

// ParseReader decodes r according to opts and parses it.
func ParseReader(r io.Reader, opts Options) (Result, error) {
	decoded, err := Decoder(r, opts)
	if err != nil {
		return Result{}, err
	}
	table, err := ReadTable(decoded)
	if err != nil {
		return Result{}, err
	}
	return FromTable(table), nil
}

// FromTable converts raw rows into records.
func FromTable(table Table) Result {
	result := Result{Header: table.Header}
	for _, row := range table.Rows {
		rec, assigned := buildRecord(table.Header, row.Cells)
		if assigned == 0 {
			result.Rejected = append(result.Rejected, Rejection{Line: row.Line, Reason: reasonNoAlignedColumns})
			continue
		}
		result.Records = append(result.Records, rec)
	}
	if table.Truncated != nil {
		result.Rejected = append(result.Rejected, *table.Truncated)
	}
	return result
}

func buildRecord(header, cells []string) (record.Record, int) {
	var rec record.Record
	assigned := 0
	for i, field := range header {
		if i >= len(cells) {
			continue
		}
		assigned++
		if field == record.FieldPrice {
			if price, ok := record.ParsePrice(cells[i]); ok {
				rec.SetNumber(field, price)
			}
			continue
		}
		rec.Set(field, record.Text(cells[i]))
	}
	return rec, assigned
}
