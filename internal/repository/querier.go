package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
)

// Querier is the full query surface of the repository. Services depend
// on this interface so tests can substitute in-memory fakes.
type Querier interface {
	// Users
	CreateUser(ctx context.Context, username, email string) (domain.User, error)
	GetUserByID(ctx context.Context, userID pgtype.UUID) (domain.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	CreatePassword(ctx context.Context, userID pgtype.UUID, hashedPass string) error
	GetUserCredentials(ctx context.Context, username string) (UserCredentials, error)

	// Sessions
	CreateSession(ctx context.Context, userID pgtype.UUID, expiresAt time.Time) (domain.Session, error)
	GetValidSession(ctx context.Context, sessionID pgtype.UUID) (SessionWithUser, error)
	DeleteSession(ctx context.Context, sessionID pgtype.UUID) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	// Addresses
	CreateAddress(ctx context.Context, arg CreateAddressParams) (domain.Address, error)
	GetAddress(ctx context.Context, addressID pgtype.UUID) (domain.Address, error)
	ListAddresses(ctx context.Context, userID pgtype.UUID) ([]domain.Address, error)

	// Items
	CreateItem(ctx context.Context, arg CreateItemParams) (domain.Item, error)
	GetItem(ctx context.Context, itemID pgtype.UUID) (domain.Item, error)
	GetItemRating(ctx context.Context, itemID pgtype.UUID) (*float64, error)
	UpdateItem(ctx context.Context, arg UpdateItemParams) (int64, error)
	DeleteItem(ctx context.Context, itemID, ownerID pgtype.UUID) (int64, error)
	CreateRating(ctx context.Context, arg CreateRatingParams) error
	SearchSuggestions(ctx context.Context, prefix string, limit int32) ([]domain.Suggestion, error)
	CreateItemMedia(ctx context.Context, arg CreateItemMediaParams) (domain.ItemMedia, error)
	GetItemMedia(ctx context.Context, mediaID pgtype.UUID) (domain.ItemMedia, error)

	// Stock
	GetStock(ctx context.Context, itemID pgtype.UUID) (int32, bool, error)
	UpsertStock(ctx context.Context, itemID pgtype.UUID, quantity int32) error
	DecrementStock(ctx context.Context, itemID pgtype.UUID, amount int32) (int64, error)
	StockTracked(ctx context.Context, itemID pgtype.UUID) (bool, error)
	StockSatisfies(ctx context.Context, itemID pgtype.UUID, quantity int32) (bool, error)

	// Cart
	UpsertCartLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error)
	UpdateCartLineQuantity(ctx context.Context, line domain.CartLine) (domain.CartLine, bool, error)
	GetCartLine(ctx context.Context, userID, itemID pgtype.UUID) (domain.CartLine, bool, error)
	DeleteCartLine(ctx context.Context, userID, itemID pgtype.UUID) (int64, error)
	ListCartLines(ctx context.Context, userID pgtype.UUID) ([]domain.CartLine, error)
	PurgeUnsatisfiableCartLines(ctx context.Context, userID pgtype.UUID) ([]domain.CartLine, error)
	DrainCart(ctx context.Context, userID pgtype.UUID) ([]domain.CartLine, error)

	// Orders
	CreateOrder(ctx context.Context, userID, addressID pgtype.UUID) (domain.Order, error)
	CreateOrderLine(ctx context.Context, orderID, itemID pgtype.UUID, quantity int32) error
	GetOrder(ctx context.Context, orderID, userID pgtype.UUID) (domain.Order, error)
	ListOrders(ctx context.Context, userID pgtype.UUID) ([]domain.Order, error)
	ListOrderLines(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderLine, error)
	GetOrderLineWithOwner(ctx context.Context, orderID, itemID pgtype.UUID) (OrderLineWithOwner, error)
	MarkOrderLineDispatched(ctx context.Context, orderID, itemID, ownerID pgtype.UUID) (int64, error)
}

// Compile-time check that Queries implements Querier.
var _ Querier = (*Queries)(nil)

// UserCredentials pairs a user with their password hash for login.
type UserCredentials struct {
	UserID     pgtype.UUID
	HashedPass string
}

// SessionWithUser is a valid session joined with its user's profile
// fields needed to build an identity.
type SessionWithUser struct {
	SessionID pgtype.UUID
	UserID    pgtype.UUID
	Username  string
	ExpiresAt pgtype.Timestamptz
}

// OrderLineWithOwner is an order line joined with the item's owner,
// used to authorize dispatch.
type OrderLineWithOwner struct {
	OrderID    pgtype.UUID
	ItemID     pgtype.UUID
	Quantity   int32
	Dispatched bool
	OwnerID    pgtype.UUID
}

// CreateAddressParams contains the columns for a new address row.
type CreateAddressParams struct {
	UserID     pgtype.UUID
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

// CreateItemParams contains the columns for a new item row.
type CreateItemParams struct {
	UserID     pgtype.UUID
	Title      string
	Content    string
	PriceCents int32
}

// UpdateItemParams contains the columns for an item edit.
type UpdateItemParams struct {
	ItemID     pgtype.UUID
	OwnerID    pgtype.UUID
	Title      string
	Content    string
	PriceCents int32
}

// CreateRatingParams contains the columns for a new rating row.
type CreateRatingParams struct {
	UserID  pgtype.UUID
	ItemID  pgtype.UUID
	Rating  int32
	Content string
}

// CreateItemMediaParams contains the columns for a new media reference.
type CreateItemMediaParams struct {
	ItemID      pgtype.UUID
	ObjectKey   string
	ContentType string
}
