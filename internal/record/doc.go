// Package record defines the collection entity shared by every scentlog
// component.
//
// A Record carries the eight known fields (brand, name, pid, image URL,
// page URL, time rated, rating, price) as typed struct fields and keeps any
// additional CSV columns in an ordered side table so they round-trip verbatim.
// Presence is tracked per field: a known string field counts as present once
// it was assigned (even to an empty string) or when it holds a non-empty
// value, rating counts as present once assigned or when non-zero, and price is
// present only when HasPrice is set.
//
// The package also owns identity resolution. Identity returns the strict key
// used by the merge engine (pid, else brand|name); LenientIdentity always
// yields a grouping key for repair workflows, substituting "unknown" for
// missing parts.
//
// Records behave as values. Mutating helpers either operate on a pointer the
// caller owns or return a copy; extras are never shared between copies.
package record
