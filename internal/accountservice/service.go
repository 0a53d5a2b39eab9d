// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/finbase/ledger-api/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, businessName string, initialBalance decimal.Decimal) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	GetBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account business logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Create opens an account with the given name and optional initial balance.
func (s *Service) Create(ctx context.Context, businessName string, initialBalance *decimal.Decimal) (domain.Account, error) {
	balance := decimal.Zero
	if initialBalance != nil {
		balance = *initialBalance
	}

	if balance.IsNegative() {
		return domain.Account{}, domain.ErrNegativeInitialBalance
	}

	return s.repo.Create(ctx, businessName, balance)
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]domain.Account, error) {
	return s.repo.List(ctx)
}

// GetBalance returns the balance view of the account with the given id.
func (s *Service) GetBalance(ctx context.Context, id uuid.UUID) (domain.AccountBalance, error) {
	balance, err := s.repo.GetBalance(ctx, id)
	if err != nil {
		return domain.AccountBalance{}, err
	}

	return domain.AccountBalance{AccountID: id, Balance: balance}, nil
}
