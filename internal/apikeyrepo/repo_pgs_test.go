package apikeyrepo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/errorspkg"
)

var apiKeyColumns = []string{"id", "account_id", "key_fingerprint", "key_hash", "created_at", "last_used"}

const (
	testFingerprint = "ab12cd34ef56ab78"
	testHash        = "$argon2id$v=19$m=65536,t=3,p=1$c29tZXNhbHQ$aGFzaGJ5dGVzaGFzaGJ5dGVzaGFzaGJ5dGVzaGFzaGJ5dGU"
)

func newRepoMock(t *testing.T) (*RepoPGS, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewRepoPGS(conn), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoMock(t)

	accountID := uuid.New()
	keyID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO api_keys")).
		WithArgs(accountID, testFingerprint, testHash).
		WillReturnRows(sqlmock.NewRows(apiKeyColumns).
			AddRow(keyID.String(), accountID.String(), testFingerprint, testHash, now, nil))

	key, err := repo.Create(context.Background(), accountID, testFingerprint, testHash)
	require.NoError(t, err)
	require.Equal(t, keyID, key.ID)
	require.Equal(t, accountID, key.AccountID)
	require.Equal(t, testFingerprint, key.Fingerprint)
	require.Equal(t, testHash, key.Hash)
	require.Nil(t, key.LastUsed)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnknownAccount(t *testing.T) {
	repo, mock := newRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO api_keys")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "api_keys_account_id_fkey"})

	_, err := repo.Create(context.Background(), uuid.New(), testFingerprint, testHash)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGetByFingerprint(t *testing.T) {
	repo, mock := newRepoMock(t)

	keyID := uuid.New()
	accountID := uuid.New()
	now := time.Now().UTC()
	lastUsed := now.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE key_fingerprint = $1")).
		WithArgs(testFingerprint).
		WillReturnRows(sqlmock.NewRows(apiKeyColumns).
			AddRow(keyID.String(), accountID.String(), testFingerprint, testHash, now, lastUsed))

	key, err := repo.GetByFingerprint(context.Background(), testFingerprint)
	require.NoError(t, err)
	require.Equal(t, keyID, key.ID)
	require.NotNil(t, key.LastUsed)
	require.True(t, lastUsed.Equal(*key.LastUsed))
}

func TestGetByFingerprintUnknown(t *testing.T) {
	repo, mock := newRepoMock(t)

	// An unknown fingerprint reads as invalid credentials, not as a
	// repository failure.
	mock.ExpectQuery(regexp.QuoteMeta("WHERE key_fingerprint = $1")).
		WithArgs(testFingerprint).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByFingerprint(context.Background(), testFingerprint)
	require.ErrorIs(t, err, domain.ErrAPIKeyInvalid)
}

func TestGetByFingerprintQueryError(t *testing.T) {
	repo, mock := newRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE key_fingerprint = $1")).
		WithArgs(testFingerprint).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.GetByFingerprint(context.Background(), testFingerprint)
	require.ErrorIs(t, err, errorspkg.ErrInternal)
}

func TestTouchLastUsed(t *testing.T) {
	repo, mock := newRepoMock(t)

	keyID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE api_keys SET last_used = NOW() WHERE id = $1")).
		WithArgs(keyID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.TouchLastUsed(context.Background(), keyID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchLastUsedError(t *testing.T) {
	repo, mock := newRepoMock(t)

	keyID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE api_keys SET last_used = NOW() WHERE id = $1")).
		WithArgs(keyID).
		WillReturnError(sql.ErrConnDone)

	require.ErrorIs(t, repo.TouchLastUsed(context.Background(), keyID), errorspkg.ErrInternal)
}
