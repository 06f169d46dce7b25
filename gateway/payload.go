package gateway

import (
	"bytes"
	"encoding/json"
)

// Payload is the raw JSON of a successful call.
type Payload json.RawMessage

// Decode unmarshals the payload into v.
func (p Payload) Decode(v interface{}) error {
	if len(bytes.TrimSpace(p)) == 0 {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(p, v)
}

// IsArray reports whether the payload is a JSON array.
func (p Payload) IsArray() bool {
	trimmed := bytes.TrimSpace(p)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// DecodeList decodes a list payload. A payload that is not an array, or does not
// decode into []T, yields an empty (never nil) slice.
func DecodeList[T any](p Payload) []T {
	if !p.IsArray() {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(p, &items); err != nil || items == nil {
		return []T{}
	}
	return items
}
