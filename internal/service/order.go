package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/events"
	"github.com/sellorama/sellorama/internal/repository"
)

type orderService struct {
	store     repository.Store
	publisher events.Publisher
}

// NewOrderService creates a new OrderService instance
func NewOrderService(store repository.Store, publisher events.Publisher) domain.OrderService {
	return &orderService{store: store, publisher: publisher}
}

// Create drains the user's cart into a new order inside one database
// transaction. Two terminal outcomes exist besides success:
//
//   - Some cart lines cannot be satisfied: the lines are purged, the
//     purge COMMITS, no order is made, and the removed lines come back
//     in a StockConflictError.
//   - A stock decrement loses a race after the purge passed: the whole
//     transaction rolls back, the cart is untouched, and the current
//     cart comes back in a StockConflictError.
func (s *orderService) Create(ctx context.Context, addressID pgtype.UUID) (*domain.OrderConfirmation, error) {
	const op = "OrderService.Create"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	userID := repository.UUIDFrom(identity.UserID)

	address, err := s.store.GetAddress(ctx, addressID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, domain.Internal(err, op, "failed to get address")
	}
	if repository.ToUUID(address.UserID) != identity.UserID {
		// Another user's address is indistinguishable from a missing one.
		return nil, domain.ErrAddressNotFound
	}

	var (
		conf      *domain.OrderConfirmation
		purged    []domain.CartLine
		lineCount int
	)
	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		removed, err := q.PurgeUnsatisfiableCartLines(ctx, userID)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			// Commit the purge but make no order.
			purged = removed
			return nil
		}

		lines, err := q.DrainCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		order, err := q.CreateOrder(ctx, userID, addressID)
		if err != nil {
			return err
		}

		for _, line := range lines {
			if err := q.CreateOrderLine(ctx, order.ID, line.ItemID, line.Quantity); err != nil {
				return err
			}

			rows, err := q.DecrementStock(ctx, line.ItemID, line.Quantity)
			if err != nil {
				return err
			}
			if rows == 0 {
				tracked, err := q.StockTracked(ctx, line.ItemID)
				if err != nil {
					return err
				}
				if tracked {
					// Stock changed between the purge and here.
					// Roll everything back; the cart stays intact.
					return &domain.StockConflictError{Lines: lines}
				}
			}
		}

		lineCount = len(lines)
		conf = &domain.OrderConfirmation{OrderID: order.ID, OrderDate: order.CreatedAt, LineCount: lineCount}
		return nil
	})
	if err != nil {
		var conflict *domain.StockConflictError
		if errors.As(err, &conflict) || domain.ErrorCode(err) != domain.EINTERNAL {
			return nil, err
		}
		return nil, domain.Internal(err, op, "failed to create order")
	}
	if purged != nil {
		return nil, &domain.StockConflictError{Lines: purged}
	}

	s.publisher.OrderCreated(events.OrderCreated{
		OrderID:   repository.ToUUID(conf.OrderID),
		UserID:    identity.UserID,
		LineCount: lineCount,
		CreatedAt: conf.OrderDate.Time,
	})

	return conf, nil
}

// Get retrieves one of the user's orders with its lines
func (s *orderService) Get(ctx context.Context, orderID pgtype.UUID) (*domain.OrderDetail, error) {
	const op = "OrderService.Get"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, orderID, repository.UUIDFrom(identity.UserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, op, "failed to get order")
	}

	lines, err := s.store.ListOrderLines(ctx, orderID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list order lines")
	}

	return &domain.OrderDetail{Order: order, Lines: lines}, nil
}

// List returns the user's orders, newest first
func (s *orderService) List(ctx context.Context) ([]domain.Order, error) {
	const op = "OrderService.List"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.ListOrders(ctx, repository.UUIDFrom(identity.UserID))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list orders")
	}

	return orders, nil
}

// MarkDispatched flips an order line's dispatch flag false->true.
// Only the owner of the line's item may dispatch, and only once.
func (s *orderService) MarkDispatched(ctx context.Context, orderID, itemID pgtype.UUID) error {
	const op = "OrderService.MarkDispatched"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return err
	}

	rows, err := s.store.MarkOrderLineDispatched(ctx, orderID, itemID, repository.UUIDFrom(identity.UserID))
	if err != nil {
		return domain.Internal(err, op, "failed to mark dispatched")
	}
	if rows == 0 {
		// Diagnose which guard refused the update.
		row, err := s.store.GetOrderLineWithOwner(ctx, orderID, itemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrOrderLineNotFound
			}
			return domain.Internal(err, op, "failed to read order line")
		}
		if repository.ToUUID(row.OwnerID) != identity.UserID {
			return domain.ErrNotItemOwner
		}
		if row.Dispatched {
			return domain.ErrAlreadyDispatched
		}
		return domain.Internal(nil, op, "dispatch update failed")
	}

	s.publisher.OrderLineDispatched(events.OrderLineDispatched{
		OrderID: repository.ToUUID(orderID),
		ItemID:  repository.ToUUID(itemID),
	})

	return nil
}
