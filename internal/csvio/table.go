package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"scentlog/internal/record"
)

// Supported encoding labels. Any WHATWG label accepted by htmlindex works.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

var headerToField = map[string]string{
	"brand":      record.FieldBrand,
	"name":       record.FieldName,
	"pid":        record.FieldPID,
	"image url":  record.FieldImageURL,
	"page url":   record.FieldPageURL,
	"time rated": record.FieldTimeRated,
	"rating":     record.FieldRating,
}

// NormalizeHeader maps a header cell to its field name. Known labels match
// case-insensitively, any header containing "price" becomes the price field
// and everything else passes through unchanged.
func NormalizeHeader(cell string) string {
	cell = strings.TrimSpace(cell)
	lower := strings.ToLower(cell)
	if field, ok := headerToField[lower]; ok {
		return field
	}
	if strings.Contains(lower, "price") {
		return record.FieldPrice
	}
	return cell
}

// Row is one data row with its 1-based source line.
type Row struct {
	Line  int
	Cells []string
}

// Table is the raw cell grid of a CSV document with a normalized header.
type Table struct {
	Header []string
	Rows   []Row
	// Truncated is set when a malformed quote ended reading early.
	Truncated *Rejection
}

// Value returns the cell of row aligned with the header column for field.
func (t Table) Value(row Row, field string) (string, bool) {
	value, found := "", false
	for i, name := range t.Header {
		if name != field || i >= len(row.Cells) {
			continue
		}
		value, found = row.Cells[i], true
	}
	return value, found
}

// Options controls how input bytes are decoded.
type Options struct {
	// Encoding is a WHATWG encoding label; empty means UTF-8.
	Encoding string
}

// Decoder returns r wrapped in a decoder for opts.Encoding. UTF-8 input has
// its byte order mark removed.
func Decoder(r io.Reader, opts Options) (io.Reader, error) {
	label := strings.TrimSpace(opts.Encoding)
	if label == "" {
		label = EncodingUTF8
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", opts.Encoding, err)
	}
	if name, _ := htmlindex.Name(enc); name == EncodingUTF8 {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// ReadTable reads a decoded CSV stream into a Table. Errors are returned only
// for read failures of the underlying stream.
func ReadTable(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	var table Table
	haveHeader := false
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				table.Truncated = &Rejection{Line: perr.StartLine, Reason: perr.Err.Error()}
				break
			}
			return Table{}, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		if blankRow(cells) {
			continue
		}
		if !haveHeader {
			table.Header = make([]string, len(cells))
			for i, cell := range cells {
				table.Header[i] = NormalizeHeader(cell)
			}
			haveHeader = true
			continue
		}
		table.Rows = append(table.Rows, Row{Line: line, Cells: cells})
	}
	return table, nil
}

func blankRow(cells []string) bool {
	return len(cells) == 0 || (len(cells) == 1 && cells[0] == "")
}
