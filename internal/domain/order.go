package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Order domain errors.
var (
	ErrOrderNotFound     = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrOrderLineNotFound = &Error{Code: ENOTFOUND, Message: "Order line not found"}
	ErrAddressNotFound   = &Error{Code: ENOTFOUND, Message: "Address not found"}
	ErrEmptyCart         = &Error{Code: EINVALID, Message: "Cart is empty"}

	// ErrAlreadyDispatched fires on a second dispatch of the same order
	// line. The dispatch flag is a one-way latch.
	ErrAlreadyDispatched = &Error{Code: EFORBIDDEN, Message: "Order line already dispatched"}
)

// OrderService converts carts into orders and manages dispatch.
type OrderService interface {
	// Create drains the user's cart into a new order inside a single
	// database transaction. If any cart line cannot be satisfied by
	// current stock, no order is made: the offending lines are removed
	// from the cart and returned via StockConflictError. On success the
	// cart is empty, stock is decremented, and the order confirmation
	// is returned.
	Create(ctx context.Context, addressID pgtype.UUID) (*OrderConfirmation, error)

	// Get retrieves one of the user's orders with its lines.
	Get(ctx context.Context, orderID pgtype.UUID) (*OrderDetail, error)

	// List returns the user's orders, newest first.
	List(ctx context.Context) ([]Order, error)

	// MarkDispatched flips an order line's dispatch flag false->true.
	// Only the owner of the line's item may dispatch, and only once.
	MarkDispatched(ctx context.Context, orderID, itemID pgtype.UUID) error
}

// Order is an immutable record of a completed checkout.
type Order struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	AddressID pgtype.UUID
	CreatedAt pgtype.Timestamptz
}

// OrderLine is one purchased item within an order. Everything but the
// dispatch flag is immutable.
type OrderLine struct {
	OrderID    pgtype.UUID
	ItemID     pgtype.UUID
	Quantity   int32
	Dispatched bool
}

// OrderConfirmation is the caller-facing result of a successful checkout.
type OrderConfirmation struct {
	OrderID   pgtype.UUID
	OrderDate pgtype.Timestamptz
	LineCount int
}

// OrderDetail aggregates an order with its lines.
type OrderDetail struct {
	Order Order
	Lines []OrderLine
}
