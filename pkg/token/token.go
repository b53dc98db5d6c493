package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// Generate returns an opaque URL-safe token with 256 bits of entropy.
// Uniqueness is enforced downstream by a unique index on the stored column;
// a collision there is treated as a fatal error for the request.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IsExpired reports whether expiresAt has passed relative to now.
// Callers must pass server time; client-supplied instants would allow
// forging the expiry window.
func IsExpired(expiresAt, now time.Time) bool {
	return !expiresAt.After(now)
}
