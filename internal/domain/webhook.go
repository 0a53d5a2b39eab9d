package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventTransactionCreated is the event type attached to every dispatched payload.
const EventTransactionCreated = "transaction.created"

// Webhook is a registered delivery endpoint. The secret is the HMAC key the
// registrant uses to verify inbound signatures.
type Webhook struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	URL       string    `json:"url"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
}

// WebhookEvent is the audit trail of one (webhook, transaction) delivery.
// It is created before the first attempt and updated after every attempt,
// so it reflects the true attempt count at all times.
type WebhookEvent struct {
	ID          uuid.UUID  `json:"id"`
	WebhookID   uuid.UUID  `json:"webhook_id"`
	TxnID       uuid.UUID  `json:"txn_id"`
	Delivered   bool       `json:"delivered"`
	RetryCount  int32      `json:"retry_count"`
	LastAttempt *time.Time `json:"last_attempt"`
	CreatedAt   time.Time  `json:"created_at"`
}

// WebhookPayload is the serialized notification body. The HMAC signature is
// computed over its exact marshaled bytes.
type WebhookPayload struct {
	EventType   string      `json:"event_type"`
	Transaction Transaction `json:"transaction"`
	Timestamp   time.Time   `json:"timestamp"`
}
