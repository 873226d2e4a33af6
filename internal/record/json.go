package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the record as a flat object with keys in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeKey := func(key string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		encoded, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		buf.WriteByte(':')
		return nil
	}

	for _, name := range r.Fields() {
		v, _ := r.Get(name)
		if err := writeKey(name); err != nil {
			return nil, err
		}
		var encoded []byte
		var err error
		if f, ok := v.Float(); ok {
			encoded, err = json.Marshal(f)
		} else {
			encoded, err = json.Marshal(v.String())
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat object, preserving the order of additional
// keys. String and number values are accepted for every field; null values
// are skipped.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	var out Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("record: field %s: %w", key, err)
		}
		switch v := tok.(type) {
		case nil:
			continue
		case string:
			out.Set(key, Text(v))
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return fmt.Errorf("record: field %s: %w", key, err)
			}
			if IsNumeric(key) {
				out.Set(key, Number(f))
			} else {
				out.Set(key, Text(v.String()))
			}
		case bool:
			out.Set(key, Text(fmt.Sprint(v)))
		default:
			return fmt.Errorf("record: field %s: unsupported value %v", key, v)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
