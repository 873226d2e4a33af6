package record

import (
	"errors"
	"fmt"
	"math"
)

// Extra is an additional column carried through verbatim.
type Extra struct {
	Key   string
	Value string
}

// Record is a single collection entry.
type Record struct {
	Brand     string
	Name      string
	PID       string
	ImageURL  string
	PageURL   string
	TimeRated string
	Rating    float64
	Price     float64
	HasPrice  bool

	set    fieldMask
	extras []Extra
}

var (
	// ErrMissingBrand marks a record without a brand.
	ErrMissingBrand = errors.New("record: brand is empty")
	// ErrMissingName marks a record without a name.
	ErrMissingName = errors.New("record: name is empty")
)

// Valid reports whether both brand and name are non-empty.
func (r Record) Valid() bool {
	return r.Brand != "" && r.Name != ""
}

// Validate returns the reasons a record is not valid, or nil.
func (r Record) Validate() error {
	var errs []error
	if r.Brand == "" {
		errs = append(errs, ErrMissingBrand)
	}
	if r.Name == "" {
		errs = append(errs, ErrMissingName)
	}
	return errors.Join(errs...)
}

func (r *Record) stringField(name string) *string {
	switch name {
	case FieldBrand:
		return &r.Brand
	case FieldName:
		return &r.Name
	case FieldPID:
		return &r.PID
	case FieldImageURL:
		return &r.ImageURL
	case FieldPageURL:
		return &r.PageURL
	case FieldTimeRated:
		return &r.TimeRated
	}
	return nil
}

// Has reports whether the field is present on the record.
func (r Record) Has(name string) bool {
	switch name {
	case FieldRating:
		return r.Rating != 0 || r.set&maskRating != 0
	case FieldPrice:
		return r.HasPrice
	}
	if p := r.stringField(name); p != nil {
		return r.set&fieldMasks[name] != 0 || *p != ""
	}
	return r.extraIndex(name) >= 0
}

// Get returns the field's value and whether it is present.
func (r Record) Get(name string) (Value, bool) {
	if !r.Has(name) {
		return Value{}, false
	}
	switch name {
	case FieldRating:
		return Number(r.Rating), true
	case FieldPrice:
		return Number(r.Price), true
	}
	if p := r.stringField(name); p != nil {
		return Text(*p), true
	}
	return Text(r.extras[r.extraIndex(name)].Value), true
}

// Set assigns a field. Text assigned to rating is coerced and defaults to 0;
// text assigned to price is coerced and removes the price when it does not
// parse. Numbers assigned to text fields are formatted.
func (r *Record) Set(name string, v Value) {
	switch name {
	case FieldRating:
		f, ok := v.Float()
		if !ok {
			f, _ = ParseRating(v.String())
		}
		if !finite(f) {
			f = 0
		}
		r.Rating = f
		r.markPresent(maskRating, f == 0)
		return
	case FieldPrice:
		f, ok := v.Float()
		if !ok {
			f, ok = ParsePrice(v.String())
		}
		if !ok || !finite(f) {
			r.Unset(FieldPrice)
			return
		}
		r.Price, r.HasPrice = f, true
		return
	}
	if p := r.stringField(name); p != nil {
		*p = v.String()
		r.markPresent(fieldMasks[name], *p == "")
		return
	}
	if i := r.extraIndex(name); i >= 0 {
		r.extras[i].Value = v.String()
		return
	}
	r.extras = append(r.extras, Extra{Key: name, Value: v.String()})
}

// SetText assigns a text value.
func (r *Record) SetText(name, value string) { r.Set(name, Text(value)) }

// SetNumber assigns a numeric value.
func (r *Record) SetNumber(name string, value float64) { r.Set(name, Number(value)) }

// Unset removes a field from the record.
func (r *Record) Unset(name string) {
	switch name {
	case FieldRating:
		r.Rating = 0
		r.set &^= maskRating
		return
	case FieldPrice:
		r.Price, r.HasPrice = 0, false
		return
	}
	if p := r.stringField(name); p != nil {
		*p = ""
		r.set &^= fieldMasks[name]
		return
	}
	if i := r.extraIndex(name); i >= 0 {
		extras := make([]Extra, 0, len(r.extras)-1)
		extras = append(extras, r.extras[:i]...)
		r.extras = append(extras, r.extras[i+1:]...)
		if len(r.extras) == 0 {
			r.extras = nil
		}
	}
}

// With returns a copy of r with the field set.
func (r Record) With(name string, v Value) Record {
	out := r.Clone()
	out.Set(name, v)
	return out
}

// Extra returns the value of an additional column.
func (r Record) Extra(key string) (string, bool) {
	if i := r.extraIndex(key); i >= 0 {
		return r.extras[i].Value, true
	}
	return "", false
}

// Extras returns a copy of the additional columns in insertion order.
func (r Record) Extras() []Extra {
	if len(r.extras) == 0 {
		return nil
	}
	out := make([]Extra, len(r.extras))
	copy(out, r.extras)
	return out
}

func (r Record) extraIndex(key string) int {
	for i, e := range r.extras {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Fields lists the fields present on r: known fields in preferred order, then
// additional columns in insertion order.
func (r Record) Fields() []string {
	out := make([]string, 0, len(KnownFields)+len(r.extras))
	for _, name := range KnownFields {
		if r.Has(name) {
			out = append(out, name)
		}
	}
	for _, e := range r.extras {
		out = append(out, e.Key)
	}
	return out
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.extras = r.Extras()
	return out
}

// Overlay returns a shallow merge of r and incoming: every field present on
// incoming replaces the field of the same name, every other field keeps r's
// value.
func (r Record) Overlay(incoming Record) Record {
	out := r.Clone()
	for _, name := range KnownFields {
		if v, ok := incoming.Get(name); ok {
			out.Set(name, v)
		}
	}
	for _, e := range incoming.extras {
		out.Set(e.Key, Text(e.Value))
	}
	return out
}

// String implements fmt.Stringer for log lines.
func (r Record) String() string {
	id, ok := Identity(r)
	if !ok {
		id = LenientIdentity(r)
	}
	return fmt.Sprintf("%s (%s %s)", id, r.Brand, r.Name)
}

// markPresent records presence for fields whose value alone would read as
// absent. The bit is kept only for zero values so equal records compare equal
// regardless of how they were built.
func (r *Record) markPresent(mask fieldMask, zero bool) {
	if zero {
		r.set |= mask
	} else {
		r.set &^= mask
	}
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
