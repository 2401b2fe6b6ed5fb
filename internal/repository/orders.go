package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
)

const createOrder = `
INSERT INTO orders (user_id, address_id)
VALUES ($1, $2)
RETURNING id, user_id, address_id, created_at`

func (q *Queries) CreateOrder(ctx context.Context, userID, addressID pgtype.UUID) (domain.Order, error) {
	var o domain.Order
	err := q.db.QueryRow(ctx, createOrder, userID, addressID).
		Scan(&o.ID, &o.UserID, &o.AddressID, &o.CreatedAt)
	return o, err
}

const createOrderLine = `
INSERT INTO order_lines (order_id, item_id, quantity)
VALUES ($1, $2, $3)`

func (q *Queries) CreateOrderLine(ctx context.Context, orderID, itemID pgtype.UUID, quantity int32) error {
	_, err := q.db.Exec(ctx, createOrderLine, orderID, itemID, quantity)
	return err
}

const getOrder = `
SELECT id, user_id, address_id, created_at
FROM orders
WHERE id = $1 AND user_id = $2`

func (q *Queries) GetOrder(ctx context.Context, orderID, userID pgtype.UUID) (domain.Order, error) {
	var o domain.Order
	err := q.db.QueryRow(ctx, getOrder, orderID, userID).
		Scan(&o.ID, &o.UserID, &o.AddressID, &o.CreatedAt)
	return o, err
}

const listOrders = `
SELECT id, user_id, address_id, created_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListOrders(ctx context.Context, userID pgtype.UUID) ([]domain.Order, error) {
	rows, err := q.db.Query(ctx, listOrders, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.AddressID, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrderLines = `
SELECT order_id, item_id, quantity, dispatched
FROM order_lines
WHERE order_id = $1
ORDER BY item_id`

func (q *Queries) ListOrderLines(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderLine, error) {
	rows, err := q.db.Query(ctx, listOrderLines, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.OrderID, &line.ItemID, &line.Quantity, &line.Dispatched); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

const getOrderLineWithOwner = `
SELECT ol.order_id, ol.item_id, ol.quantity, ol.dispatched, i.user_id
FROM order_lines ol
JOIN items i ON i.id = ol.item_id
WHERE ol.order_id = $1 AND ol.item_id = $2`

// GetOrderLineWithOwner fetches a line together with the item owner so
// the service can distinguish a missing line from a forbidden caller.
func (q *Queries) GetOrderLineWithOwner(ctx context.Context, orderID, itemID pgtype.UUID) (OrderLineWithOwner, error) {
	var row OrderLineWithOwner
	err := q.db.QueryRow(ctx, getOrderLineWithOwner, orderID, itemID).
		Scan(&row.OrderID, &row.ItemID, &row.Quantity, &row.Dispatched, &row.OwnerID)
	return row, err
}

const markOrderLineDispatched = `
UPDATE order_lines ol
SET dispatched = true
FROM items i
WHERE ol.order_id = $1 AND ol.item_id = $2
  AND i.id = ol.item_id AND i.user_id = $3
  AND ol.dispatched = false`

// MarkOrderLineDispatched flips a line to dispatched, guarded by item
// ownership and the not-yet-dispatched state. Zero rows means the line
// is missing, already dispatched, or owned by someone else; callers
// disambiguate with GetOrderLineWithOwner.
func (q *Queries) MarkOrderLineDispatched(ctx context.Context, orderID, itemID, ownerID pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, markOrderLineDispatched, orderID, itemID, ownerID)
	return tag.RowsAffected(), err
}
