// Package revocation tracks tokens that were signed out before they expired.
//
// Entries are keyed by the SHA-256 of the raw token and carry the token's own
// expiry. Once a token would have expired anyway its entry is dead weight, so
// every backend drops entries at that point.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store records revoked tokens.
type Store interface {
	// Revoke marks token as revoked until expiresAt. Revoking a token twice,
	// or one already past expiresAt, is not an error.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	// IsRevoked reports whether token is currently revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Hash returns the key a token is stored under. Raw tokens are never persisted.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
