// Package guid generates and validates the short client identifiers used
// throughout the SRS wire protocol.
package guid

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// Length is the fixed size of a valid GUID: the URL-safe base64 encoding of
// 16 random bytes with the trailing padding stripped.
const Length = 22

// New returns a freshly generated GUID. It never changes within the
// lifetime of the client instance that generated it.
func New() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// Valid reports whether s has the shape of a GUID produced by New: exactly
// Length bytes. It does not re-derive or verify the encoding, only
// the length invariant the wire codec depends on.
func Valid(s string) bool {
	return len(s) == Length
}
