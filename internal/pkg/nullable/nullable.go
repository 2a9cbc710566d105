// Package nullable distinguishes a JSON field that was omitted from one that
// was sent as null.
package nullable

import (
	"bytes"
	"encoding/json"
)

// Field is unset when the key was absent, set with a nil Value when the key
// was null.
type Field[T any] struct {
	Set   bool
	Value *T
}

func Of[T any](v T) Field[T] { return Field[T]{Set: true, Value: &v} }

func Null[T any]() Field[T] { return Field[T]{Set: true} }

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}
