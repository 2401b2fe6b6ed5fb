package domain

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// Cart domain errors.
var (
	// ErrSelfPurchase is returned on any attempt to carry one's own item
	// in the cart. The invariant is enforced at every mutation point.
	ErrSelfPurchase = &Error{Code: EFORBIDDEN, Message: "You cannot add your own item to your cart"}

	// ErrInsufficientStock is returned when a requested quantity exceeds
	// the tracked stock for an item.
	ErrInsufficientStock = &Error{Code: ECONFLICT, Message: "Requested quantity exceeds available stock"}

	// ErrCartLineNotFound is returned when updating a line that does not exist.
	ErrCartLineNotFound = &Error{Code: ENOTFOUND, Message: "Item is not in your cart"}
)

// CartService manages the per-user cart: a mutable set of (item,
// quantity) lines pending purchase. Lines always hold a positive
// quantity; setting a quantity to zero or below deletes the line.
type CartService interface {
	// AddItem merges quantity into the user's cart line for an item,
	// creating the line if absent. The merge is additive: adding 2 to an
	// existing line of 3 yields 5. The stock and self-purchase checks
	// run against the final quantity.
	AddItem(ctx context.Context, itemID pgtype.UUID, quantity int32) (*CartLine, error)

	// SetQuantity replaces a line's quantity. Quantities <= 0 delete the
	// line unconditionally. Positive quantities are validated against
	// current stock; on failure the line is left unchanged and
	// ErrCartNotUpdated is returned.
	SetQuantity(ctx context.Context, itemID pgtype.UUID, quantity int32) (*CartLine, error)

	// List returns the user's cart lines in insertion order.
	List(ctx context.Context) ([]CartLine, error)
}

// CheckoutService is the read-side pre-flight for checkout: it prunes
// cart lines that no longer satisfy stock and reports what it removed.
type CheckoutService interface {
	// Validate purges every cart line whose quantity can no longer be
	// satisfied by current stock and returns the removed lines. An empty
	// result means the cart is ready for checkout. Calling it again
	// without intervening mutation yields an empty result.
	Validate(ctx context.Context) ([]CartLine, error)
}

// CartLine is one (user, item, quantity) entry pending purchase.
type CartLine struct {
	UserID   pgtype.UUID
	ItemID   pgtype.UUID
	Quantity int32
}

// ErrCartNotUpdated signals a quantity update that was refused by the
// stock check, leaving the line unchanged.
var ErrCartNotUpdated = &Error{Code: ECONFLICT, Message: "Cart not updated: requested quantity exceeds available stock"}

// StockConflictError reports cart lines that blocked a checkout. For
// checkout validation and the purge path of order creation the lines
// have already been removed from the cart; for an aborted order
// transaction they are the user's current, unchanged cart.
type StockConflictError struct {
	Lines []CartLine
}

// Error implements the error interface.
func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for %d cart line(s)", len(e.Lines))
}
