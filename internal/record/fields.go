package record

import "sort"

// Known field names as stored on records.
const (
	FieldBrand     = "brand"
	FieldName      = "name"
	FieldPID       = "pid"
	FieldImageURL  = "imageUrl"
	FieldPageURL   = "pageUrl"
	FieldTimeRated = "timeRated"
	FieldRating    = "rating"
	FieldPrice     = "price"
)

// KnownFields lists the known fields in their preferred column order.
var KnownFields = []string{
	FieldBrand,
	FieldName,
	FieldPID,
	FieldImageURL,
	FieldPageURL,
	FieldTimeRated,
	FieldRating,
	FieldPrice,
}

var fieldLabels = map[string]string{
	FieldBrand:     "Brand",
	FieldName:      "Name",
	FieldPID:       "PID",
	FieldImageURL:  "Image URL",
	FieldPageURL:   "Page URL",
	FieldTimeRated: "Time Rated",
	FieldRating:    "Rating",
	FieldPrice:     "Price",
}

type fieldMask uint8

const (
	maskBrand fieldMask = 1 << iota
	maskName
	maskPID
	maskImageURL
	maskPageURL
	maskTimeRated
	maskRating
	maskPrice
)

var fieldMasks = map[string]fieldMask{
	FieldBrand:     maskBrand,
	FieldName:      maskName,
	FieldPID:       maskPID,
	FieldImageURL:  maskImageURL,
	FieldPageURL:   maskPageURL,
	FieldTimeRated: maskTimeRated,
	FieldRating:    maskRating,
	FieldPrice:     maskPrice,
}

// IsKnown reports whether name is one of the eight known fields.
func IsKnown(name string) bool {
	_, ok := fieldMasks[name]
	return ok
}

// IsNumeric reports whether the field holds numbers (rating and price).
func IsNumeric(name string) bool {
	return name == FieldRating || name == FieldPrice
}

// Label returns the display label for a field. Unknown fields pass through.
func Label(name string) string {
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return name
}

// FieldSet returns the union of field names present across records: the known
// fields that appear anywhere, in preferred order, followed by every other
// field name sorted lexicographically.
func FieldSet(records []Record) []string {
	var known fieldMask
	extra := make(map[string]struct{})
	for i := range records {
		r := &records[i]
		for _, name := range KnownFields {
			if r.Has(name) {
				known |= fieldMasks[name]
			}
		}
		for _, e := range r.extras {
			extra[e.Key] = struct{}{}
		}
	}

	out := make([]string, 0, len(KnownFields)+len(extra))
	for _, name := range KnownFields {
		if known&fieldMasks[name] != 0 {
			out = append(out, name)
		}
	}
	rest := make([]string, 0, len(extra))
	for name := range extra {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(out, rest...)
}
