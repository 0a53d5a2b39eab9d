// Package apikeyrepo manages repository layer of API keys.
package apikeyrepo

import (
	"context"
	"database/sql"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/dbpkg"
	"github.com/finbase/ledger-api/pkg/errorspkg"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates API key repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns API key RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    api_keys (account_id, key_fingerprint, key_hash)
VALUES
    ($1, $2, $3)
RETURNING id, account_id, key_fingerprint, key_hash, created_at, last_used
`

// Create stores the fingerprint and hash of a freshly generated key.
func (r *RepoPGS) Create(ctx context.Context, accountID uuid.UUID, fingerprint, hash string) (domain.APIKey, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, accountID, fingerprint, hash)

	k, err := scanAPIKey(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "api_keys_account_id_fkey" {
				return k, domain.ErrAccountNotFound
			}
		}

		return k, errorspkg.ErrInternal
	}

	return k, nil
}

const getByFingerprintQuery = `
SELECT
	id, account_id, key_fingerprint, key_hash, created_at, last_used
FROM api_keys
WHERE key_fingerprint = $1
`

// GetByFingerprint returns the key record indexed by the given fingerprint.
func (r *RepoPGS) GetByFingerprint(ctx context.Context, fingerprint string) (domain.APIKey, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByFingerprintQuery, fingerprint)

	k, err := scanAPIKey(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return k, domain.ErrAPIKeyInvalid
		}

		l.Error().Err(err).Send()

		return k, errorspkg.ErrInternal
	}

	return k, nil
}

const touchLastUsedQuery = `
UPDATE api_keys
SET last_used = NOW()
WHERE id = $1
`

// TouchLastUsed records that the key was just used successfully.
func (r *RepoPGS) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, touchLastUsedQuery, id); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

func scanAPIKey(row *sql.Row) (domain.APIKey, error) {
	var (
		k        domain.APIKey
		lastUsed sql.NullTime
	)

	err := row.Scan(
		&k.ID,
		&k.AccountID,
		&k.Fingerprint,
		&k.Hash,
		&k.CreatedAt,
		&lastUsed,
	)
	if err != nil {
		return k, err
	}

	if lastUsed.Valid {
		t := lastUsed.Time
		k.LastUsed = &t
	}

	return k, nil
}
