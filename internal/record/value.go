package record

import (
	"strconv"
	"strings"
)

// Value is a field value at rest: either text or a number.
type Value struct {
	text    string
	num     float64
	numeric bool
}

// Text wraps a string value.
func Text(s string) Value { return Value{text: s} }

// Number wraps a numeric value.
func Number(f float64) Value { return Value{num: f, numeric: true} }

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool { return v.numeric }

// Float returns the numeric value. ok is false for text values.
func (v Value) Float() (float64, bool) {
	if !v.numeric {
		return 0, false
	}
	return v.num, true
}

// String renders the value the way it is displayed and serialized.
func (v Value) String() string {
	if v.numeric {
		return FormatNumber(v.num)
	}
	return v.text
}

// Missing reports whether the value counts as missing: text that is empty
// after trimming. Numbers, zero included, are never missing.
func (v Value) Missing() bool {
	if v.numeric {
		return false
	}
	return strings.TrimSpace(v.text) == ""
}

// FormatNumber renders f with the shortest representation that round-trips.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
