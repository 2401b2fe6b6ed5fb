package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
)

type cartService struct {
	store repository.Store
}

// NewCartService creates a new CartService instance
func NewCartService(store repository.Store) domain.CartService {
	return &cartService{store: store}
}

// AddItem merges quantity into the user's cart line for an item.
// The self-purchase and stock checks run inside one transaction so the
// checks apply to the merged quantity, not the increment.
func (s *cartService) AddItem(ctx context.Context, itemID pgtype.UUID, quantity int32) (*domain.CartLine, error) {
	const op = "CartService.AddItem"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		return nil, domain.Invalid(op, "quantity must be positive")
	}

	userID := repository.UUIDFrom(identity.UserID)

	var merged domain.CartLine
	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		item, err := q.GetItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrItemNotFound
			}
			return err
		}
		if repository.ToUUID(item.UserID) == identity.UserID {
			return domain.ErrSelfPurchase
		}

		merged, err = q.UpsertCartLine(ctx, domain.CartLine{
			UserID:   userID,
			ItemID:   itemID,
			Quantity: quantity,
		})
		if err != nil {
			return err
		}

		// Validate the final merged quantity. A failure rolls the
		// merge back, leaving the line as it was.
		ok, err := q.StockSatisfies(ctx, itemID, merged.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientStock
		}

		return nil
	})
	if err != nil {
		if domain.ErrorCode(err) != domain.EINTERNAL {
			return nil, err
		}
		return nil, domain.Internal(err, op, "failed to add item to cart")
	}

	return &merged, nil
}

// SetQuantity replaces a line's quantity. Quantities <= 0 delete the
// line unconditionally.
func (s *cartService) SetQuantity(ctx context.Context, itemID pgtype.UUID, quantity int32) (*domain.CartLine, error) {
	const op = "CartService.SetQuantity"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	userID := repository.UUIDFrom(identity.UserID)

	if quantity <= 0 {
		if _, err := s.store.DeleteCartLine(ctx, userID, itemID); err != nil {
			return nil, domain.Internal(err, op, "failed to remove cart line")
		}
		return nil, nil
	}

	updated, ok, err := s.store.UpdateCartLineQuantity(ctx, domain.CartLine{
		UserID:   userID,
		ItemID:   itemID,
		Quantity: quantity,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update cart line")
	}
	if !ok {
		// Zero rows: the line does not exist, or stock refused the new
		// quantity. Disambiguate with a read.
		_, found, err := s.store.GetCartLine(ctx, userID, itemID)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to read cart line")
		}
		if !found {
			return nil, domain.ErrCartLineNotFound
		}
		return nil, domain.ErrCartNotUpdated
	}

	return &updated, nil
}

// List returns the user's cart lines
func (s *cartService) List(ctx context.Context) ([]domain.CartLine, error) {
	const op = "CartService.List"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	lines, err := s.store.ListCartLines(ctx, repository.UUIDFrom(identity.UserID))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list cart lines")
	}

	return lines, nil
}
