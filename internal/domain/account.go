// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNegativeInitialBalance indicates a negative opening balance.
	ErrNegativeInitialBalance = errors.New("initial balance must not be negative")
)

// Account holds a business balance. The balance never goes negative;
// the invariant is enforced by the conditional updates in the transaction
// engine, never by application-level locking.
type Account struct {
	ID           uuid.UUID       `json:"id"`
	BusinessName string          `json:"business_name"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AccountBalance is the reduced balance view of an account.
type AccountBalance struct {
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}
