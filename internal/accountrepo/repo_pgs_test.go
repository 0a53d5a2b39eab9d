package accountrepo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/errorspkg"
)

var accountColumns = []string{"id", "business_name", "balance", "created_at", "updated_at"}

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
	balance := decimal.RequireFromString("100")
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs("Acme Corp", balance).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(accountID.String(), "Acme Corp", "100", now, now))

	account, err := repo.Create(context.Background(), "Acme Corp", balance)
	require.NoError(t, err)
	require.Equal(t, accountID, account.ID)
	require.Equal(t, "Acme Corp", account.BusinessName)
	require.True(t, balance.Equal(account.Balance))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNegativeBalanceConstraint(t *testing.T) {
	repo, mock := newRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "accounts_balance_check"})

	_, err := repo.Create(context.Background(), "Acme Corp", decimal.RequireFromString("-5"))
	require.ErrorIs(t, err, domain.ErrNegativeInitialBalance)
}

func TestGet(t *testing.T) {
	repo, mock := newRepoMock(t)

	accountID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(accountID).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(accountID.String(), "Acme Corp", "42.50", now, now))

	account, err := repo.Get(context.Background(), accountID)
	require.NoError(t, err)
	require.Equal(t, accountID, account.ID)
	require.True(t, decimal.RequireFromString("42.50").Equal(account.Balance))
}

func TestGetNotFound(t *testing.T) {
	repo, mock := newRepoMock(t)

	accountID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(accountID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), accountID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newRepoMock(t)

	first := uuid.New()
	second := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(first.String(), "Acme Corp", "10", now, now).
			AddRow(second.String(), "Globex LLC", "20", now, now))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, first, items[0].ID)
	require.Equal(t, "Globex LLC", items[1].BusinessName)
}

func TestListEmpty(t *testing.T) {
	repo, mock := newRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(accountColumns))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestGetBalance(t *testing.T) {
	repo, mock := newRepoMock(t)

	accountID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM accounts WHERE id = $1")).
		WithArgs(accountID).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("60"))

	balance, err := repo.GetBalance(context.Background(), accountID)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("60").Equal(balance))
}

func TestGetBalanceNotFound(t *testing.T) {
	repo, mock := newRepoMock(t)

	accountID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM accounts WHERE id = $1")).
		WithArgs(accountID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBalance(context.Background(), accountID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGetBalanceQueryError(t *testing.T) {
	repo, mock := newRepoMock(t)

	accountID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM accounts WHERE id = $1")).
		WithArgs(accountID).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.GetBalance(context.Background(), accountID)
	require.ErrorIs(t, err, errorspkg.ErrInternal)
}
