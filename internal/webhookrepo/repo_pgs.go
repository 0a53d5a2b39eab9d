// Package webhookrepo manages repository layer of webhooks and their
// delivery events.
package webhookrepo

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

// RepoPGS facilitates webhook repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns webhook RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    webhooks (account_id, url, secret)
VALUES
    ($1, $2, $3)
RETURNING id, account_id, url, secret, created_at
`

// Create registers a webhook endpoint for the account.
func (r *RepoPGS) Create(ctx context.Context, accountID uuid.UUID, url, secret string) (domain.Webhook, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, accountID, url, secret)

	var w domain.Webhook

	err := row.Scan(
		&w.ID,
		&w.AccountID,
		&w.URL,
		&w.Secret,
		&w.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "webhooks_account_id_fkey" {
				return w, domain.ErrAccountNotFound
			}
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const listQuery = `
SELECT
	id, account_id, url, secret, created_at
FROM webhooks
ORDER BY created_at DESC
`

// List returns all registered webhooks, newest first.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Webhook, error) {
	return r.list(ctx, listQuery)
}

const listByAccountQuery = `
SELECT
	id, account_id, url, secret, created_at
FROM webhooks
WHERE account_id = $1
`

// ListByAccount returns all webhooks registered against the given account.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Webhook, error) {
	return r.list(ctx, listByAccountQuery, accountID)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...interface{}) ([]domain.Webhook, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Webhook{}

	for rows.Next() {
		var w domain.Webhook
		if err := rows.Scan(&w.ID, &w.AccountID, &w.URL, &w.Secret, &w.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, w)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const createEventQuery = `
INSERT INTO
    webhook_events (webhook_id, txn_id, delivered, retry_count)
VALUES
    ($1, $2, false, 0)
RETURNING id, webhook_id, txn_id, delivered, retry_count, last_attempt, created_at
`

// CreateEvent records the audit row for one (webhook, transaction) pair.
// It exists before the first delivery attempt is made.
func (r *RepoPGS) CreateEvent(ctx context.Context, webhookID, txnID uuid.UUID) (domain.WebhookEvent, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createEventQuery, webhookID, txnID)

	e, err := scanEvent(row)
	if err != nil {
		l.Error().Err(err).Send()
		return e, errorspkg.ErrInternal
	}

	return e, nil
}

const updateEventQuery = `
UPDATE webhook_events
SET delivered = $1, retry_count = $2, last_attempt = NOW()
WHERE id = $3
RETURNING id, webhook_id, txn_id, delivered, retry_count, last_attempt, created_at
`

// UpdateEventAttempt durably records the outcome of one delivery attempt.
func (r *RepoPGS) UpdateEventAttempt(ctx context.Context, id uuid.UUID, delivered bool, retryCount int32) (domain.WebhookEvent, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateEventQuery, delivered, retryCount, id)

	e, err := scanEvent(row)
	if err != nil {
		l.Error().Err(err).Send()
		return e, errorspkg.ErrInternal
	}

	return e, nil
}

func scanEvent(row *sql.Row) (domain.WebhookEvent, error) {
	var (
		e           domain.WebhookEvent
		lastAttempt sql.NullTime
	)

	err := row.Scan(
		&e.ID,
		&e.WebhookID,
		&e.TxnID,
		&e.Delivered,
		&e.RetryCount,
		&lastAttempt,
		&e.CreatedAt,
	)
	if err != nil {
		return e, err
	}

	if lastAttempt.Valid {
		t := lastAttempt.Time
		e.LastAttempt = &t
	}

	return e, nil
}
