/*
Package randx provides identifier generation and validation for the plaza server.

User ids are minted client-side; this package validates their shape and mints
the server-side session and event identifiers.
*/
package randx

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxUserIDLength bounds externally supplied user ids. Client generated ids
	// are UUIDs or short random slugs; anything longer is rejected upstream.
	MaxUserIDLength = 64
)

// SessionID mints a UUID v4 string identifying one plaza viewing session.
func SessionID() string {
	return uuid.New().String()
}

// EventID mints a UUID v4 string identifying one outbound session event.
func EventID() string {
	return uuid.New().String()
}

// IsValidUserID reports whether an externally supplied user id is acceptable:
// non-empty, within length bounds, and free of whitespace and control bytes.
func IsValidUserID(id string) bool {
	if id == "" || len(id) > MaxUserIDLength {
		return false
	}

	if strings.TrimSpace(id) != id {
		return false
	}

	for _, char := range id {
		if char < 0x21 || char > 0x7e {
			return false
		}
	}

	return true
}
