package app

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// newSessionCode returns a 6-character uppercase hex join code. Uniqueness
// is enforced by the store at creation time; the coordinator retries on
// collision.
func newSessionCode() string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return strings.ToUpper(hex.EncodeToString(b))
}

// newID returns a random identifier for sessions and participants.
func newID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
