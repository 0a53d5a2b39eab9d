// Package transactionservice manages business logic layer of transactions.
package transactionservice

import (
	"context"

	"github.com/finbase/ledger-api/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	Execute(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Transaction, error)
	List(ctx context.Context) ([]domain.Transaction, error)
}

// Dispatcher notifies registered webhooks of a completed transaction.
type Dispatcher interface {
	Dispatch(ctx context.Context, txn domain.Transaction)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo       Repo
	dispatcher Dispatcher
}

// New returns transaction service struct to manage transaction business logic.
func New(tr Repo, d Dispatcher) *Service {
	return &Service{
		repo:       tr,
		dispatcher: d,
	}
}

func validateShape(arg domain.CreateTransactionParams) error {
	switch arg.TxnType {
	case domain.TxnTypeCredit:
		if arg.FromAccountID != nil {
			return domain.ErrCreditHasFromAccount
		}

		if arg.ToAccountID == nil {
			return domain.ErrCreditMissingToAccount
		}
	case domain.TxnTypeDebit:
		if arg.FromAccountID == nil {
			return domain.ErrDebitMissingFromAccount
		}

		if arg.ToAccountID != nil {
			return domain.ErrDebitHasToAccount
		}
	case domain.TxnTypeTransfer:
		if arg.FromAccountID == nil || arg.ToAccountID == nil {
			return domain.ErrTransferMissingAccounts
		}
	default:
		return domain.ErrInvalidTxnType
	}

	if !arg.Amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	return nil
}

// Create validates the request shape, executes the atomic balance update,
// and hands the persisted transaction to the webhook dispatcher.
//
// Dispatch runs in the background: its outcome never affects the response,
// and events in flight at process shutdown stay undelivered in storage.
func (s *Service) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if err := validateShape(arg); err != nil {
		l.Info().Err(err).Send()
		return domain.Transaction{}, err
	}

	txn, err := s.repo.Execute(ctx, arg)
	if err != nil {
		return domain.Transaction{}, err
	}

	// The request context ends with the response; deliveries get their own.
	dispatchCtx := l.WithContext(context.Background())
	go s.dispatcher.Dispatch(dispatchCtx, txn)

	return txn, nil
}

// Get returns the transaction with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// List returns all transactions.
func (s *Service) List(ctx context.Context) ([]domain.Transaction, error) {
	return s.repo.List(ctx)
}
