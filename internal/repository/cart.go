package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
)

const upsertCartLine = `
INSERT INTO cart_lines (user_id, item_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, item_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity
RETURNING user_id, item_id, quantity`

// UpsertCartLine adds the line's quantity to an existing line or
// creates one, returning the merged line.
func (q *Queries) UpsertCartLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	var merged domain.CartLine
	err := q.db.QueryRow(ctx, upsertCartLine, line.UserID, line.ItemID, line.Quantity).
		Scan(&merged.UserID, &merged.ItemID, &merged.Quantity)
	return merged, err
}

const updateCartLineQuantity = `
UPDATE cart_lines c
SET quantity = $3
WHERE c.user_id = $1 AND c.item_id = $2
  AND COALESCE((SELECT s.quantity >= $3 FROM stock s WHERE s.item_id = c.item_id), true)
RETURNING c.user_id, c.item_id, c.quantity`

// UpdateCartLineQuantity sets a line to an absolute quantity, guarded
// by the stock predicate in the WHERE clause. The bool is false when
// no row was changed, either because the line does not exist or the
// stock cannot cover the new quantity.
func (q *Queries) UpdateCartLineQuantity(ctx context.Context, line domain.CartLine) (domain.CartLine, bool, error) {
	var updated domain.CartLine
	err := q.db.QueryRow(ctx, updateCartLineQuantity, line.UserID, line.ItemID, line.Quantity).
		Scan(&updated.UserID, &updated.ItemID, &updated.Quantity)
	if err != nil {
		if isNoRows(err) {
			return domain.CartLine{}, false, nil
		}
		return domain.CartLine{}, false, err
	}
	return updated, true, nil
}

const getCartLine = `
SELECT user_id, item_id, quantity
FROM cart_lines
WHERE user_id = $1 AND item_id = $2`

func (q *Queries) GetCartLine(ctx context.Context, userID, itemID pgtype.UUID) (domain.CartLine, bool, error) {
	var line domain.CartLine
	err := q.db.QueryRow(ctx, getCartLine, userID, itemID).
		Scan(&line.UserID, &line.ItemID, &line.Quantity)
	if err != nil {
		if isNoRows(err) {
			return domain.CartLine{}, false, nil
		}
		return domain.CartLine{}, false, err
	}
	return line, true, nil
}

const deleteCartLine = `
DELETE FROM cart_lines
WHERE user_id = $1 AND item_id = $2`

func (q *Queries) DeleteCartLine(ctx context.Context, userID, itemID pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCartLine, userID, itemID)
	return tag.RowsAffected(), err
}

const listCartLines = `
SELECT user_id, item_id, quantity
FROM cart_lines
WHERE user_id = $1
ORDER BY created_at`

func (q *Queries) ListCartLines(ctx context.Context, userID pgtype.UUID) ([]domain.CartLine, error) {
	rows, err := q.db.Query(ctx, listCartLines, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.UserID, &line.ItemID, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

const purgeUnsatisfiableCartLines = `
DELETE FROM cart_lines c
WHERE c.user_id = $1
  AND NOT COALESCE((SELECT s.quantity >= c.quantity FROM stock s WHERE s.item_id = c.item_id), true)
RETURNING c.user_id, c.item_id, c.quantity`

// PurgeUnsatisfiableCartLines removes every line whose quantity the
// current stock cannot cover and returns the removed lines. Untracked
// items are never purged.
func (q *Queries) PurgeUnsatisfiableCartLines(ctx context.Context, userID pgtype.UUID) ([]domain.CartLine, error) {
	rows, err := q.db.Query(ctx, purgeUnsatisfiableCartLines, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var removed []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.UserID, &line.ItemID, &line.Quantity); err != nil {
			return nil, err
		}
		removed = append(removed, line)
	}
	return removed, rows.Err()
}

const drainCart = `
DELETE FROM cart_lines
WHERE user_id = $1
RETURNING user_id, item_id, quantity`

// DrainCart empties the cart and returns the lines it held.
func (q *Queries) DrainCart(ctx context.Context, userID pgtype.UUID) ([]domain.CartLine, error) {
	rows, err := q.db.Query(ctx, drainCart, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.UserID, &line.ItemID, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
