package model

import (
	"bytes"
	"encoding/json"
)

// Optional is a PATCH field for a nullable column. The zero value means the
// key was absent; Present with a nil Value is an explicit null that clears it.
type Optional[T any] struct {
	Present bool
	Value   *T
}

// Set returns a present Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: &v}
}

// Null returns a present Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true}
}

// Apply returns the patched value of a field currently holding cur.
func (o Optional[T]) Apply(cur *T) *T {
	if !o.Present {
		return cur
	}
	return o.Value
}

// UnmarshalJSON marks the field present. encoding/json only calls it when the
// key appears, including for a literal null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
