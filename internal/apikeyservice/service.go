// Package apikeyservice manages business logic layer of API keys:
// key issuance and credential verification.
package apikeyservice

import (
	"context"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/errorspkg"
	"github.com/finbase/ledger-api/pkg/keypkg"
	"github.com/finbase/ledger-api/pkg/randompkg"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by API key service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package apikeyservice
type Repo interface {
	Create(ctx context.Context, accountID uuid.UUID, fingerprint, hash string) (domain.APIKey, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (domain.APIKey, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
}

// Service facilitates API key service layer logic.
type Service struct {
	repo Repo
}

// New returns API key service struct to manage API key business logic.
func New(kr Repo) *Service {
	return &Service{repo: kr}
}

// Create generates a raw key, stores only its fingerprint and slow hash,
// and returns the raw key. This is the only time the key material exists
// outside the caller's hands; it cannot be recovered later.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID) (domain.APIKeyWithSecret, error) {
	l := zerolog.Ctx(ctx)

	rawKey := randompkg.Secret()
	fingerprint := keypkg.Fingerprint(rawKey)

	hash, err := keypkg.Hash(rawKey)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.APIKeyWithSecret{}, errorspkg.ErrInternal
	}

	stored, err := s.repo.Create(ctx, accountID, fingerprint, hash)
	if err != nil {
		return domain.APIKeyWithSecret{}, err
	}

	return domain.APIKeyWithSecret{
		ID:        stored.ID,
		AccountID: stored.AccountID,
		Key:       rawKey,
		CreatedAt: stored.CreatedAt,
		LastUsed:  stored.LastUsed,
	}, nil
}

// Authenticate resolves a presented raw key to its stored record.
//
// An unknown fingerprint and a hash mismatch both return ErrAPIKeyInvalid, so
// responses cannot be used to enumerate fingerprints. A stored hash that
// cannot be parsed returns ErrKeyHashCorrupt, which is an integrity failure
// rather than an auth failure.
func (s *Service) Authenticate(ctx context.Context, rawKey string) (domain.APIKey, error) {
	l := zerolog.Ctx(ctx)

	key, err := s.repo.GetByFingerprint(ctx, keypkg.Fingerprint(rawKey))
	if err != nil {
		return domain.APIKey{}, err
	}

	ok, err := keypkg.Verify(rawKey, key.Hash)
	if err != nil {
		l.Error().Err(err).Str("key_id", key.ID.String()).Msg("stored key hash is unreadable")
		return domain.APIKey{}, domain.ErrKeyHashCorrupt
	}

	if !ok {
		return domain.APIKey{}, domain.ErrAPIKeyInvalid
	}

	// Best effort; a failed timestamp update must not fail the request.
	if err := s.repo.TouchLastUsed(ctx, key.ID); err != nil {
		l.Warn().Err(err).Str("key_id", key.ID.String()).Msg("failed to update last_used")
	}

	return key, nil
}
