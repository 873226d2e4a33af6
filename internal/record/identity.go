package record

import "strings"

// KeySeparator joins brand and name in composite identity keys.
const KeySeparator = "|"

const unknownPart = "unknown"

// HasUsablePID reports whether the pid is non-blank and not the literal "0".
func HasUsablePID(r Record) bool {
	pid := strings.TrimSpace(r.PID)
	return pid != "" && pid != "0"
}

// Identity returns the strict identity key: the pid when usable, else
// brand|name when both are present. ok is false when neither applies.
func Identity(r Record) (string, bool) {
	if HasUsablePID(r) {
		return strings.TrimSpace(r.PID), true
	}
	if r.Brand != "" && r.Name != "" {
		return r.Brand + KeySeparator + r.Name, true
	}
	return "", false
}

// LenientIdentity always returns a grouping key, substituting "unknown" for a
// missing brand or name.
func LenientIdentity(r Record) string {
	if key, ok := Identity(r); ok {
		return key
	}
	brand, name := r.Brand, r.Name
	if brand == "" {
		brand = unknownPart
	}
	if name == "" {
		name = unknownPart
	}
	return brand + KeySeparator + name
}
