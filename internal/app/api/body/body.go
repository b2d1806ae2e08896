// internal/app/api/body/body.go

// Package body decodes JSON request bodies. Create payloads decode into a
// typed struct; update payloads decode into a Patch so handlers can tell an
// omitted field (left untouched) from a field explicitly set to null or
// empty (cleared).
package body

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
)

// MaxBytes caps request bodies at 1 MB; uploads use their own limit.
const MaxBytes = 1 << 20

// Decode reads a JSON body into dst. Unknown fields are ignored, matching
// the list endpoints' treatment of unrecognized query parameters.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validationf("invalid JSON body: %v", err)
	}
	return nil
}

// Patch is a partial update payload keyed by field name. Presence in the map
// means the caller explicitly supplied the field.
type Patch map[string]json.RawMessage

// DecodePatch reads a JSON object body into a Patch.
func DecodePatch(r *http.Request) (Patch, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBytes))
	if err != nil {
		return nil, apperr.Server(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Patch{}, nil
	}
	var p Patch
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperr.Validationf("invalid JSON body: %v", err)
	}
	return p, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// String returns the field's value and whether it was present. An explicit
// null decodes as the empty string, which stores treat as "clear".
func (p Patch) String(key string) (value string, present bool, err error) {
	raw, ok := p[key]
	if !ok {
		return "", false, nil
	}
	if isNull(raw) {
		return "", true, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", true, apperr.Validationf("field %q must be a string", key)
	}
	return value, true, nil
}

// Int returns the field's value and whether it was present; null is 0.
func (p Patch) Int(key string) (value int, present bool, err error) {
	raw, ok := p[key]
	if !ok {
		return 0, false, nil
	}
	if isNull(raw) {
		return 0, true, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, true, apperr.Validationf("field %q must be an integer", key)
	}
	return value, true, nil
}

// Int64 is Int for 64-bit fields (amounts in cents).
func (p Patch) Int64(key string) (value int64, present bool, err error) {
	raw, ok := p[key]
	if !ok {
		return 0, false, nil
	}
	if isNull(raw) {
		return 0, true, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, true, apperr.Validationf("field %q must be an integer", key)
	}
	return value, true, nil
}

// Time returns the field's value and whether it was present; null yields a
// nil time (clear).
func (p Patch) Time(key string) (value *time.Time, present bool, err error) {
	raw, ok := p[key]
	if !ok {
		return nil, false, nil
	}
	if isNull(raw) {
		return nil, true, nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, true, apperr.Validationf("field %q must be an RFC 3339 timestamp", key)
	}
	return &t, true, nil
}
