// Package transactionrepo manages repository layer of transactions,
// including the atomic balance-update unit.
package transactionrepo

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

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	conn *sql.DB
}

// NewRepoPGS returns transaction RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		conn: db,
	}
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1, updated_at = NOW()
WHERE id = $2
`

// The balance predicate is evaluated atomically with the decrement. Two
// concurrent debits can both reach this statement; only the ones the balance
// covers will report an affected row.
const subtractBalanceQuery = `
UPDATE accounts
SET balance = balance - $1, updated_at = NOW()
WHERE id = $2 AND balance >= $1
`

const insertQuery = `
INSERT INTO
    transactions (from_account, to_account, amount, txn_type, status)
VALUES
    ($1, $2, $3, $4, 'completed')
RETURNING id, from_account, to_account, amount, txn_type, status, created_at
`

// Execute applies the validated transaction's balance mutations and inserts
// its record within a single database transaction. Either everything
// commits or nothing does.
func (r *RepoPGS) Execute(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var t domain.Transaction

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return t, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	switch arg.TxnType {
	case domain.TxnTypeCredit:
		if err := r.addBalance(ctx, tx, arg.Amount, *arg.ToAccountID); err != nil {
			return t, err
		}
	case domain.TxnTypeDebit:
		if err := r.subtractBalance(ctx, tx, arg.Amount, *arg.FromAccountID); err != nil {
			return t, err
		}
	case domain.TxnTypeTransfer:
		if err := r.subtractBalance(ctx, tx, arg.Amount, *arg.FromAccountID); err != nil {
			return t, err
		}

		if err := r.addBalance(ctx, tx, arg.Amount, *arg.ToAccountID); err != nil {
			return t, err
		}
	}

	row := tx.QueryRowContext(ctx, insertQuery,
		toNullUUID(arg.FromAccountID),
		toNullUUID(arg.ToAccountID),
		arg.Amount,
		arg.TxnType,
	)

	t, err = scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_from_account_fkey", "transactions_to_account_fkey":
				return domain.Transaction{}, domain.ErrAccountNotFound
			}
		}

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}

func (r *RepoPGS) addBalance(ctx context.Context, tx dbpkg.SQLInterface, amount decimal.Decimal, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	res, err := tx.ExecContext(ctx, addBalanceQuery, amount, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	affected, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if affected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func (r *RepoPGS) subtractBalance(ctx context.Context, tx dbpkg.SQLInterface, amount decimal.Decimal, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	res, err := tx.ExecContext(ctx, subtractBalanceQuery, amount, id)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return domain.ErrInsufficientBalance
			}
		}

		return errorspkg.ErrInternal
	}

	affected, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if affected == 0 {
		return domain.ErrInsufficientBalance
	}

	return nil
}

const getQuery = `
SELECT
	id, from_account, to_account, amount, txn_type, status, created_at
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.conn.QueryRowContext(ctx, getQuery, id)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listQuery = `
SELECT
	id, from_account, to_account, amount, txn_type, status, created_at
FROM transactions
ORDER BY created_at DESC
`

// List returns all transactions, newest first.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.conn.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var (
			t    domain.Transaction
			from uuid.NullUUID
			to   uuid.NullUUID
		)

		if err := rows.Scan(&t.ID, &from, &to, &t.Amount, &t.TxnType, &t.Status, &t.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		t.FromAccount = fromNullUUID(from)
		t.ToAccount = fromNullUUID(to)

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (domain.Transaction, error) {
	var (
		t    domain.Transaction
		from uuid.NullUUID
		to   uuid.NullUUID
	)

	err := row.Scan(
		&t.ID,
		&from,
		&to,
		&t.Amount,
		&t.TxnType,
		&t.Status,
		&t.CreatedAt,
	)
	if err != nil {
		return t, err
	}

	t.FromAccount = fromNullUUID(from)
	t.ToAccount = fromNullUUID(to)

	return t, nil
}

func toNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}

	return uuid.NullUUID{UUID: *id, Valid: true}
}

func fromNullUUID(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}

	u := n.UUID

	return &u
}
