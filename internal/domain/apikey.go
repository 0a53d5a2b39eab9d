package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAPIKeyInvalid covers both unknown fingerprints and hash mismatches,
	// so callers cannot enumerate which half failed.
	ErrAPIKeyInvalid = errors.New("invalid API key")
	// ErrAPIKeyMissing indicates that no credential was presented.
	ErrAPIKeyMissing = errors.New("missing x-api-key header")
	// ErrKeyHashCorrupt indicates that a stored key hash cannot be verified
	// against any input. A data integrity failure, not an auth failure.
	ErrKeyHashCorrupt = errors.New("invalid key hash format")
)

// APIKey identifies a caller. Only the fingerprint (lookup index) and the
// slow hash (verification secret) are stored; the raw key is irrecoverable.
type APIKey struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   uuid.UUID  `json:"account_id"`
	Fingerprint string     `json:"key_fingerprint"`
	Hash        string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsed    *time.Time `json:"last_used"`
}

// APIKeyWithSecret is returned exactly once at creation time and carries
// the raw key material.
type APIKeyWithSecret struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"account_id"`
	Key       string     `json:"key"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used"`
}
