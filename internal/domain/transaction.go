package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TxnTypeCredit   = "credit"
	TxnTypeDebit    = "debit"
	TxnTypeTransfer = "transfer"
)

// StatusCompleted is the only transaction status; no pending or failed
// state is modeled.
const StatusCompleted = "completed"

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidTxnType indicates an unknown transaction type.
	ErrInvalidTxnType = errors.New("transaction type must be 'credit', 'debit', or 'transfer'")
	// ErrCreditHasFromAccount indicates a credit carrying a source account.
	ErrCreditHasFromAccount = errors.New("credit transactions should not have a from_account_id")
	// ErrCreditMissingToAccount indicates a credit without a destination account.
	ErrCreditMissingToAccount = errors.New("credit transactions must have a to_account_id")
	// ErrDebitMissingFromAccount indicates a debit without a source account.
	ErrDebitMissingFromAccount = errors.New("debit transactions must have a from_account_id")
	// ErrDebitHasToAccount indicates a debit carrying a destination account.
	ErrDebitHasToAccount = errors.New("debit transactions should not have a to_account_id")
	// ErrTransferMissingAccounts indicates a transfer missing either account.
	ErrTransferMissingAccounts = errors.New("transfer transactions must have both from_account_id and to_account_id")
	// ErrInvalidAmount indicates a zero or negative amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientBalance indicates that the source account cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient funds")
)

// Transaction records a completed balance movement. Immutable once created.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	FromAccount *uuid.UUID      `json:"from_account"`
	ToAccount   *uuid.UUID      `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	TxnType     string          `json:"txn_type"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateTransactionParams is the input data for the transaction engine.
type CreateTransactionParams struct {
	FromAccountID *uuid.UUID      `json:"from_account_id"`
	ToAccountID   *uuid.UUID      `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	TxnType       string          `json:"txn_type"`
}
