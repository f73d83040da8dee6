package domain

import (
	"bytes"
	"encoding/json"
)

// Optional is a payload field that tells an omitted key apart from an
// explicit JSON null. Set is false when the key was absent; Value is nil when
// it was null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a supplied, non-null field.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a supplied field that clears the stored value.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// IsZero lets `omitzero` drop fields that were never set.
func (o Optional[T]) IsZero() bool { return !o.Set }

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// UnmarshalJSON is only called for keys present in the document, including
// those set to null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
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
