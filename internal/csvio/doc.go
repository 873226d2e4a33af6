// Package csvio converts between bulk CSV text and collection records.
//
// Parsing is lenient: the first non-empty row is the header, known column
// names are normalized to record fields, rating and price cells are coerced
// and rows that cannot be aligned to any header column are reported as
// rejections instead of failing the whole parse. Serialization is the
// deterministic inverse, with column order taken from record.FieldSet and
// cells quoted only when they contain a comma, a quote or a newline.
package csvio
