package domain

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5/pgtype"
)

// Item domain errors.
var (
	ErrItemNotFound = &Error{Code: ENOTFOUND, Message: "Item not found"}
	ErrNotItemOwner = &Error{Code: EFORBIDDEN, Message: "Only the item owner may do this"}
	ErrInvalidPrice = &Error{Code: EINVALID, Message: "Price must be positive"}
)

// ItemService provides item listing CRUD, ratings, and media.
// Write operations are owner-gated: modifying another user's item is
// EFORBIDDEN, a missing item is ENOTFOUND - the two are never conflated.
type ItemService interface {
	// Create lists a new item owned by the authenticated user.
	Create(ctx context.Context, params ItemParams) (*Item, error)

	// Get retrieves an item with its average rating. SameUser reports
	// whether the viewer owns the item.
	Get(ctx context.Context, itemID pgtype.UUID) (*ItemDetail, error)

	// Update edits an item's listing fields. Owner only.
	Update(ctx context.Context, itemID pgtype.UUID, params ItemParams) error

	// Delete removes an item. Owner only.
	Delete(ctx context.Context, itemID pgtype.UUID) error

	// Rate records a rating with optional review text for an item.
	Rate(ctx context.Context, params RateParams) error

	// SearchSuggestions returns item titles matching a prefix, bounded.
	SearchSuggestions(ctx context.Context, query string, limit int) ([]Suggestion, error)

	// AttachMedia stores an uploaded file in the object store and
	// records the reference against the item. Owner only.
	AttachMedia(ctx context.Context, itemID pgtype.UUID, filename, contentType string, content io.Reader) (*ItemMedia, error)

	// MediaURL resolves a stored media reference to a fetchable URL.
	MediaURL(ctx context.Context, mediaID pgtype.UUID) (string, error)
}

// StockService is the authoritative ledger of per-item available
// quantity. A missing stock row means the item is untracked and any
// quantity is considered available; an explicit zero means out of stock.
type StockService interface {
	// GetQuantity returns the tracked quantity for an item.
	// The second return is false when the item is untracked.
	GetQuantity(ctx context.Context, itemID pgtype.UUID) (int32, bool, error)

	// SetQuantity upserts the stock record for an item. Only the item's
	// owner may set stock: a non-owner gets ErrNotItemOwner, a missing
	// item gets ErrItemNotFound.
	SetQuantity(ctx context.Context, itemID pgtype.UUID, quantity int32) error
}

// Item is a listed item for sale.
type Item struct {
	ID         pgtype.UUID
	UserID     pgtype.UUID
	Title      string
	Content    string
	PriceCents int32
	CreatedAt  pgtype.Timestamptz
}

// ItemDetail is an item with its derived rating, as shown to a viewer.
type ItemDetail struct {
	Item     Item
	Rating   *float64 // nil when the item has no ratings yet
	SameUser bool
}

// ItemParams contains the fields required to create or edit an item.
type ItemParams struct {
	Title      string `validate:"required,max=200"`
	Content    string `validate:"max=5000"`
	PriceCents int32  `validate:"gt=0"`
}

// RateParams contains the fields required to rate an item.
type RateParams struct {
	ItemID  pgtype.UUID
	Rating  int32  `validate:"min=1,max=5"`
	Content string `validate:"max=2000"`
}

// Suggestion is a search suggestion row.
type Suggestion struct {
	ItemID pgtype.UUID
	Title  string
}

// ItemMedia is a reference to an uploaded media object.
type ItemMedia struct {
	ID          pgtype.UUID
	ItemID      pgtype.UUID
	ObjectKey   string
	ContentType string
	URL         string
}
