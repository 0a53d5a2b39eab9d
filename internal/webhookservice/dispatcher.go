// Package webhookservice manages webhook registration and the asynchronous
// delivery of transaction notifications.
package webhookservice

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/finbase/ledger-api/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SignatureHeader carries the hex HMAC-SHA256 of the exact body bytes.
// Receivers verify by recomputing the MAC over the raw bytes they read.
const SignatureHeader = "X-Signature"

// MaxRetries is the number of retries after the first attempt,
// so a webhook endpoint sees at most MaxRetries+1 requests per event.
const MaxRetries = 3

// Repo provides data access layer interface needed by webhook service layer.
//
//go:generate mockgen -source dispatcher.go -destination dispatcher_mock.go -package webhookservice
type Repo interface {
	Create(ctx context.Context, accountID uuid.UUID, url, secret string) (domain.Webhook, error)
	List(ctx context.Context) ([]domain.Webhook, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Webhook, error)
	CreateEvent(ctx context.Context, webhookID, txnID uuid.UUID) (domain.WebhookEvent, error)
	UpdateEventAttempt(ctx context.Context, id uuid.UUID, delivered bool, retryCount int32) (domain.WebhookEvent, error)
}

// Dispatcher fans a completed transaction out to every webhook registered
// against its involved accounts and delivers with bounded retry.
type Dispatcher struct {
	repo   Repo
	client *http.Client

	sleep func(time.Duration)
	now   func() time.Time
}

// NewDispatcher returns a Dispatcher posting through the given client.
// A nil client gets a default with a 10 second timeout.
func NewDispatcher(wr Repo, client *http.Client) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Dispatcher{
		repo:   wr,
		client: client,
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// Dispatch creates one WebhookEvent per (webhook, transaction) pair and runs
// each delivery in its own goroutine, so a slow endpoint never delays the
// others. It returns once every delivery loop has finished.
func (d *Dispatcher) Dispatch(ctx context.Context, txn domain.Transaction) {
	l := zerolog.Ctx(ctx)
	l.Info().Str("txn_id", txn.ID.String()).Msg("starting webhook delivery")

	var wg sync.WaitGroup

	for _, accountID := range involvedAccounts(txn) {
		webhooks, err := d.repo.ListByAccount(ctx, accountID)
		if err != nil {
			l.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to list webhooks")
			continue
		}

		for _, webhook := range webhooks {
			// The audit row must exist even if delivery never succeeds.
			event, err := d.repo.CreateEvent(ctx, webhook.ID, txn.ID)
			if err != nil {
				l.Error().Err(err).Str("webhook_id", webhook.ID.String()).Msg("failed to create webhook event")
				continue
			}

			wg.Add(1)

			go func(w domain.Webhook, e domain.WebhookEvent) {
				defer wg.Done()
				d.deliver(ctx, w, txn, e)
			}(webhook, event)
		}
	}

	wg.Wait()
}

// involvedAccounts returns the distinct account ids touched by the transaction.
func involvedAccounts(txn domain.Transaction) []uuid.UUID {
	ids := []uuid.UUID{}

	if txn.FromAccount != nil {
		ids = append(ids, *txn.FromAccount)
	}

	if txn.ToAccount != nil && (txn.FromAccount == nil || *txn.ToAccount != *txn.FromAccount) {
		ids = append(ids, *txn.ToAccount)
	}

	return ids
}

func (d *Dispatcher) deliver(ctx context.Context, webhook domain.Webhook, txn domain.Transaction, event domain.WebhookEvent) {
	l := zerolog.Ctx(ctx)

	payload := domain.WebhookPayload{
		EventType:   domain.EventTransactionCreated,
		Transaction: txn,
		Timestamp:   d.now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		// Terminal: the payload will never serialize differently.
		l.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to serialize webhook payload")

		if _, err := d.repo.UpdateEventAttempt(ctx, event.ID, false, 0); err != nil {
			l.Error().Err(err).Send()
		}

		return
	}

	signature := Sign(webhook.Secret, body)

	for attempt := int32(0); attempt <= MaxRetries; attempt++ {
		success := d.post(ctx, webhook.URL, body, signature)

		if _, err := d.repo.UpdateEventAttempt(ctx, event.ID, success, attempt); err != nil {
			l.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to record delivery attempt")
		}

		if success {
			l.Info().Str("event_id", event.ID.String()).Msg("webhook delivered")
			return
		}

		if attempt < MaxRetries {
			d.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}

	l.Error().
		Str("event_id", event.ID.String()).
		Int("attempts", MaxRetries+1).
		Msg("webhook delivery exhausted retries")
}

// post sends one delivery attempt. Any 2xx response counts as success;
// everything else, including transport errors, is a failed attempt.
func (d *Dispatcher) post(ctx context.Context, url string, body []byte, signature string) bool {
	l := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		l.Error().Err(err).Send()
		return false
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, signature)

	resp, err := d.client.Do(req)
	if err != nil {
		l.Warn().Err(err).Msg("webhook delivery attempt failed")
		return false
	}

	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}

// Sign computes the signature header value for the given body:
// "sha256=" followed by the hex HMAC-SHA256 under the webhook secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
