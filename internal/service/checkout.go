package service

import (
	"context"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
)

type checkoutService struct {
	repo repository.Querier
}

// NewCheckoutService creates a new CheckoutService instance
func NewCheckoutService(repo repository.Querier) domain.CheckoutService {
	return &checkoutService{repo: repo}
}

// Validate purges cart lines that stock can no longer satisfy and
// returns the removed lines. The purge is a single DELETE..RETURNING,
// so running it twice in a row yields nothing the second time.
func (s *checkoutService) Validate(ctx context.Context) ([]domain.CartLine, error) {
	const op = "CheckoutService.Validate"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.PurgeUnsatisfiableCartLines(ctx, repository.UUIDFrom(identity.UserID))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to validate cart")
	}

	return removed, nil
}
