package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
)

type stockService struct {
	repo repository.Querier
}

// NewStockService creates a new StockService instance
func NewStockService(repo repository.Querier) domain.StockService {
	return &stockService{repo: repo}
}

// GetQuantity returns the tracked quantity for an item. The second
// return is false when the item is untracked.
func (s *stockService) GetQuantity(ctx context.Context, itemID pgtype.UUID) (int32, bool, error) {
	const op = "StockService.GetQuantity"

	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, domain.ErrItemNotFound
		}
		return 0, false, domain.Internal(err, op, "failed to get item")
	}

	quantity, tracked, err := s.repo.GetStock(ctx, itemID)
	if err != nil {
		return 0, false, domain.Internal(err, op, "failed to get stock")
	}

	return quantity, tracked, nil
}

// SetQuantity upserts the stock record for an item. Owner only.
func (s *stockService) SetQuantity(ctx context.Context, itemID pgtype.UUID, quantity int32) error {
	const op = "StockService.SetQuantity"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return err
	}

	if quantity < 0 {
		return domain.Invalid(op, "stock quantity cannot be negative")
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		return domain.Internal(err, op, "failed to get item")
	}
	if repository.ToUUID(item.UserID) != identity.UserID {
		return domain.ErrNotItemOwner
	}

	if err := s.repo.UpsertStock(ctx, itemID, quantity); err != nil {
		return domain.Internal(err, op, "failed to set stock")
	}

	return nil
}
