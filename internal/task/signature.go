package task

import (
	"bytes"
	"encoding/json"
)

// Signature is a task's cache key: a canonical JSON encoding of an arbitrary
// nested-array value. Equality is defined as canonical-JSON byte equality,
// which implies semantic equality only because producers never put a map
// directly in a signature (maps have no stable key order; callers that need
// map-shaped data must sort it into a slice of pairs first).
type Signature json.RawMessage

// NewSignature canonically encodes v. v must not contain Go maps — slices
// and structs preserve field/element order, which is what gives the
// resulting bytes a stable, comparable form.
func NewSignature(v any) (Signature, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Signature(b), nil
}

// Equal reports whether two signatures are canonically identical.
func (s Signature) Equal(o Signature) bool {
	return bytes.Equal([]byte(s), []byte(o))
}

// Raw exposes the underlying bytes, e.g. for persistence.
func (s Signature) Raw() json.RawMessage { return json.RawMessage(s) }
