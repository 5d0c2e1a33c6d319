package domain

import "encoding/json"

// Optional wraps a field of a sparse update payload and records whether the
// field was present in the JSON document, so handlers can distinguish an
// absent field from an explicit null or zero value.
type Optional[T any] struct {
	Value T
	Set   bool
}

// UnmarshalJSON marks the field as provided. An explicit JSON null counts as
// provided: Set is true and Value is the type's zero value.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON encodes the wrapped value, or null when the field was never set.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
