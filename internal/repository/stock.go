package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getStock = `
SELECT quantity
FROM stock
WHERE item_id = $1`

// GetStock reports the tracked quantity for an item. The second return
// is false when the item has no stock record at all, meaning quantity
// is untracked and sales are unlimited.
func (q *Queries) GetStock(ctx context.Context, itemID pgtype.UUID) (int32, bool, error) {
	var quantity int32
	err := q.db.QueryRow(ctx, getStock, itemID).Scan(&quantity)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return quantity, true, nil
}

const upsertStock = `
INSERT INTO stock (item_id, quantity)
VALUES ($1, $2)
ON CONFLICT (item_id) DO UPDATE SET quantity = EXCLUDED.quantity`

func (q *Queries) UpsertStock(ctx context.Context, itemID pgtype.UUID, quantity int32) error {
	_, err := q.db.Exec(ctx, upsertStock, itemID, quantity)
	return err
}

const decrementStock = `
UPDATE stock
SET quantity = quantity - $2
WHERE item_id = $1 AND quantity >= $2`

// DecrementStock atomically subtracts quantity when enough remains.
// A zero row count means either the item is untracked or the stock
// would go negative; callers disambiguate with StockTracked.
func (q *Queries) DecrementStock(ctx context.Context, itemID pgtype.UUID, quantity int32) (int64, error) {
	tag, err := q.db.Exec(ctx, decrementStock, itemID, quantity)
	return tag.RowsAffected(), err
}

const stockTracked = `
SELECT EXISTS(SELECT 1 FROM stock WHERE item_id = $1)`

func (q *Queries) StockTracked(ctx context.Context, itemID pgtype.UUID) (bool, error) {
	var tracked bool
	err := q.db.QueryRow(ctx, stockTracked, itemID).Scan(&tracked)
	return tracked, err
}

const stockSatisfies = `
SELECT COALESCE((SELECT quantity >= $2 FROM stock WHERE item_id = $1), true)`

// StockSatisfies reports whether an item can cover the requested
// quantity. Items without a stock record always satisfy.
func (q *Queries) StockSatisfies(ctx context.Context, itemID pgtype.UUID, quantity int32) (bool, error) {
	var ok bool
	err := q.db.QueryRow(ctx, stockSatisfies, itemID, quantity).Scan(&ok)
	return ok, err
}
