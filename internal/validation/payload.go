package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Payload is a decoded JSON object kept field-by-field so validators can
// tell an omitted field from an explicit null from a typed value.
type Payload map[string]json.RawMessage

var ErrMalformedBody = errors.New("malformed request body")

func DecodePayload(r io.Reader) (Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrMalformedBody
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// An empty body validates like {}: every field is simply absent.
		return Payload{}, nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, ErrMalformedBody
	}
	return p, nil
}

func (p Payload) Has(field string) bool {
	_, ok := p[field]
	return ok
}

func (p Payload) Null(field string) bool {
	raw, ok := p[field]
	return ok && isNull(raw)
}

// String returns the field as a string. ok is false when the field is
// absent, null, or not a JSON string.
func (p Payload) String(field string) (string, bool) {
	raw, ok := p[field]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (p Payload) Int(field string) (int, bool) {
	raw, ok := p[field]
	if !ok || isNull(raw) {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func (p Payload) Bool(field string) (bool, bool) {
	raw, ok := p[field]
	if !ok || isNull(raw) {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

func (p Payload) StringList(field string) ([]string, bool) {
	raw, ok := p[field]
	if !ok || isNull(raw) {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	if list == nil {
		list = []string{}
	}
	return list, true
}

func (p Payload) Raw(field string) (json.RawMessage, bool) {
	raw, ok := p[field]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
