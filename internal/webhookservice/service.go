package webhookservice

import (
	"context"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/randompkg"

	"github.com/google/uuid"
)

// Service facilitates webhook registration logic.
type Service struct {
	repo Repo
}

// NewService returns webhook service struct to manage webhook registration.
func NewService(wr Repo) *Service {
	return &Service{repo: wr}
}

// Create registers a delivery URL for the account with a generated signing
// secret. The secret is returned so the registrant can verify signatures.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, url string) (domain.Webhook, error) {
	return s.repo.Create(ctx, accountID, url, randompkg.Secret())
}

// List returns all registered webhooks.
func (s *Service) List(ctx context.Context) ([]domain.Webhook, error) {
	return s.repo.List(ctx)
}
