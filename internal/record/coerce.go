package record

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	nonPriceChar = regexp.MustCompile(`[^0-9.]`)
)

// ParseLeadingFloat parses the longest numeric prefix of s, ignoring leading
// whitespace ("8.5/10" yields 8.5). Results that are not finite are rejected.
func ParseLeadingFloat(s string) (float64, bool) {
	match := leadingFloat.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseRating coerces a rating cell. ok is false when no number is present;
// the parser then stores 0.
func ParseRating(s string) (float64, bool) {
	return ParseLeadingFloat(s)
}

// CleanPrice strips every character that is not a digit or a dot.
func CleanPrice(s string) string {
	return nonPriceChar.ReplaceAllString(s, "")
}

// ParsePrice coerces a price cell ("$1,234.50" yields 1234.5). ok is false
// when nothing numeric remains; the parser then omits the field.
func ParsePrice(s string) (float64, bool) {
	return ParseLeadingFloat(CleanPrice(s))
}
