// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/dbpkg"
	"github.com/finbase/ledger-api/pkg/errorspkg"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (business_name, balance)
VALUES
    ($1, $2)
RETURNING id, business_name, balance, created_at, updated_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, businessName string, initialBalance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, businessName, initialBalance)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.BusinessName,
		&a.Balance,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrNegativeInitialBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, business_name, balance, created_at, updated_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.BusinessName,
		&a.Balance,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listQuery = `
SELECT
	id, business_name, balance, created_at, updated_at
FROM accounts
ORDER BY created_at DESC
`

// List returns all accounts, newest first.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.BusinessName, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const getBalanceQuery = `
SELECT balance
FROM accounts
WHERE id = $1
`

// GetBalance returns only the balance of the account with the given id.
func (r *RepoPGS) GetBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getBalanceQuery, id)

	var balance decimal.Decimal

	if err := row.Scan(&balance); err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return balance, domain.ErrAccountNotFound
		}

		return balance, errorspkg.ErrInternal
	}

	return balance, nil
}
