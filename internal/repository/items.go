package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
)

const createItem = `
INSERT INTO items (user_id, title, content, price_cents)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, title, content, price_cents, created_at`

func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (domain.Item, error) {
	var it domain.Item
	err := q.db.QueryRow(ctx, createItem,
		arg.UserID, arg.Title, arg.Content, arg.PriceCents).
		Scan(&it.ID, &it.UserID, &it.Title, &it.Content, &it.PriceCents, &it.CreatedAt)
	return it, err
}

const getItem = `
SELECT id, user_id, title, content, price_cents, created_at
FROM items
WHERE id = $1`

func (q *Queries) GetItem(ctx context.Context, itemID pgtype.UUID) (domain.Item, error) {
	var it domain.Item
	err := q.db.QueryRow(ctx, getItem, itemID).
		Scan(&it.ID, &it.UserID, &it.Title, &it.Content, &it.PriceCents, &it.CreatedAt)
	return it, err
}

const getItemRating = `
SELECT AVG(rating)::float8
FROM ratings
WHERE item_id = $1`

// GetItemRating returns the average rating, or nil when unrated.
func (q *Queries) GetItemRating(ctx context.Context, itemID pgtype.UUID) (*float64, error) {
	var rating *float64
	err := q.db.QueryRow(ctx, getItemRating, itemID).Scan(&rating)
	return rating, err
}

const updateItem = `
UPDATE items
SET title = $3, content = $4, price_cents = $5
WHERE id = $1 AND user_id = $2`

// UpdateItem edits an item's listing fields, scoped to the owner.
// Returns the number of rows changed.
func (q *Queries) UpdateItem(ctx context.Context, arg UpdateItemParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateItem,
		arg.ItemID, arg.OwnerID, arg.Title, arg.Content, arg.PriceCents)
	return tag.RowsAffected(), err
}

const deleteItem = `
DELETE FROM items
WHERE id = $1 AND user_id = $2`

func (q *Queries) DeleteItem(ctx context.Context, itemID, ownerID pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteItem, itemID, ownerID)
	return tag.RowsAffected(), err
}

const createRating = `
INSERT INTO ratings (user_id, item_id, rating, content)
VALUES ($1, $2, $3, $4)`

func (q *Queries) CreateRating(ctx context.Context, arg CreateRatingParams) error {
	_, err := q.db.Exec(ctx, createRating,
		arg.UserID, arg.ItemID, arg.Rating, arg.Content)
	return err
}

const searchSuggestions = `
SELECT id, title
FROM items
WHERE title ILIKE $1 || '%'
ORDER BY title
LIMIT $2`

// SearchSuggestions matches item titles by prefix, case-insensitively.
func (q *Queries) SearchSuggestions(ctx context.Context, prefix string, limit int32) ([]domain.Suggestion, error) {
	rows, err := q.db.Query(ctx, searchSuggestions, prefix, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []domain.Suggestion
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(&s.ItemID, &s.Title); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

const createItemMedia = `
INSERT INTO item_media (item_id, object_key, content_type)
VALUES ($1, $2, $3)
RETURNING id, item_id, object_key, content_type`

func (q *Queries) CreateItemMedia(ctx context.Context, arg CreateItemMediaParams) (domain.ItemMedia, error) {
	var m domain.ItemMedia
	err := q.db.QueryRow(ctx, createItemMedia,
		arg.ItemID, arg.ObjectKey, arg.ContentType).
		Scan(&m.ID, &m.ItemID, &m.ObjectKey, &m.ContentType)
	return m, err
}

const getItemMedia = `
SELECT id, item_id, object_key, content_type
FROM item_media
WHERE id = $1`

func (q *Queries) GetItemMedia(ctx context.Context, mediaID pgtype.UUID) (domain.ItemMedia, error) {
	var m domain.ItemMedia
	err := q.db.QueryRow(ctx, getItemMedia, mediaID).
		Scan(&m.ID, &m.ItemID, &m.ObjectKey, &m.ContentType)
	return m, err
}
