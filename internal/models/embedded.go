package models

import (
	"encoding/json"
	"fmt"
)

// Embedded is a JSON document the installer ships as a string field, such as
// a host inventory or a validations_info blob. It is parsed while the outer
// resource is decoded. A malformed inner document never fails the outer
// decode: the error is kept and Value reports nothing.
type Embedded[T any] struct {
	raw   string
	value *T
	err   error
}

// NewEmbedded encodes v into its string form
func NewEmbedded[T any](v T) (Embedded[T], error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Embedded[T]{}, err
	}
	return Embedded[T]{raw: string(data), value: &v}, nil
}

// ParseEmbedded builds an Embedded from the raw string form
func ParseEmbedded[T any](raw string) Embedded[T] {
	e := Embedded[T]{raw: raw}
	e.parse()
	return e
}

func (e *Embedded[T]) parse() {
	if e.raw == "" {
		return
	}
	var v T
	if err := json.Unmarshal([]byte(e.raw), &v); err != nil {
		e.err = fmt.Errorf("malformed embedded document: %w", err)
		return
	}
	e.value = &v
}

// Raw returns the string exactly as received
func (e Embedded[T]) Raw() string {
	return e.raw
}

// Value returns the parsed document. ok is false when the field was absent,
// empty or unparseable.
func (e Embedded[T]) Value() (v *T, ok bool) {
	return e.value, e.value != nil
}

// Err returns the parse failure, if any
func (e Embedded[T]) Err() error {
	return e.err
}

// IsZero reports whether the field was absent
func (e Embedded[T]) IsZero() bool {
	return e.raw == ""
}

// UnmarshalJSON decodes the string form and parses it
func (e *Embedded[T]) UnmarshalJSON(data []byte) error {
	*e = Embedded[T]{}
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &e.raw); err != nil {
		// Not a string: keep what we got for diagnostics.
		e.raw = string(data)
		e.err = fmt.Errorf("embedded document is not a JSON string: %w", err)
		return nil
	}
	e.parse()
	return nil
}

// MarshalJSON writes the original string back unchanged
func (e Embedded[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.raw)
}

// MarshalYAML renders the parsed document when there is one
func (e Embedded[T]) MarshalYAML() (interface{}, error) {
	if e.value != nil {
		return e.value, nil
	}
	return e.raw, nil
}
