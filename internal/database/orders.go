package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, status, total, user_id, customer_name, customer_phone, customer_email, customer_address, customer_notes, created_at`

const createOrder = `
INSERT INTO orders (status, total, user_id, customer_name, customer_phone, customer_email, customer_address, customer_notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	Status          string
	Total           pgtype.Numeric
	UserID          string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   pgtype.Text
	CustomerAddress pgtype.Text
	CustomerNotes   pgtype.Text
}

// CreateOrder inserts an order. The database assigns both the ID and the
// created_at timestamp (server clock, never the client's).
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.Status, arg.Total, arg.UserID,
		arg.CustomerName, arg.CustomerPhone,
		arg.CustomerEmail, arg.CustomerAddress, arg.CustomerNotes)
	return scanOrder(row)
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, name, price, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, menu_item_id, name, price, quantity
`

type CreateOrderItemParams struct {
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	Quantity   int32
}

// CreateOrderItem inserts one denormalized line-item snapshot.
func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.Name, arg.Price, arg.Quantity)
	return scanOrderItem(row)
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

// GetOrder returns one order. Absence surfaces as pgx.ErrNoRows.
func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	return scanOrder(row)
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
`

// ListOrders returns every order, most recent first.
func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const listOrdersByStatus = `
SELECT ` + orderColumns + `
FROM orders
WHERE status = $1
ORDER BY created_at DESC
`

// ListOrdersByStatus returns the orders in one status bucket, most recent
// first. The kitchen view polls this per bucket.
func (q *Queries) ListOrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByStatus, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const listOrderItemsByOrder = `
SELECT id, order_id, menu_item_id, name, price, quantity
FROM order_items
WHERE order_id = $1
ORDER BY name
`

// ListOrderItemsByOrder returns the line items of one order.
func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderItems(rows)
}

const listAllOrderItems = `
SELECT oi.id, oi.order_id, oi.menu_item_id, oi.name, oi.price, oi.quantity
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
ORDER BY o.created_at DESC, oi.name
`

// ListAllOrderItems returns every line item across all orders, in the same
// most-recent-first order as ListOrders. The reporting functions consume this.
func (q *Queries) ListAllOrderItems(ctx context.Context) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listAllOrderItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderItems(rows)
}

const setOrderStatus = `
UPDATE orders
SET status = $2
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type SetOrderStatusParams struct {
	ID         uuid.UUID
	Status     string
	FromStatus string
}

// SetOrderStatus moves an order to a new status, guarded by the status the
// caller observed. Zero rows (pgx.ErrNoRows) means the order is gone or
// another terminal advanced it first.
func (q *Queries) SetOrderStatus(ctx context.Context, arg SetOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, setOrderStatus, arg.ID, arg.Status, arg.FromStatus)
	return scanOrder(row)
}

const deleteOrder = `
DELETE FROM orders
WHERE id = $1
RETURNING id
`

// DeleteOrder removes an order and, via cascade, its line items. There is
// deliberately no status precondition here; the UI restricts cancellation
// to pending orders by convention.
func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteOrder, id).Scan(&deleted)
	return deleted, err
}

// --- row scanning ---

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.Status,
		&o.Total,
		&o.UserID,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.CustomerEmail,
		&o.CustomerAddress,
		&o.CustomerNotes,
		&o.CreatedAt,
	)
	return o, err
}

func scanOrders(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func scanOrderItem(row rowScanner) (OrderItem, error) {
	var it OrderItem
	err := row.Scan(
		&it.ID,
		&it.OrderID,
		&it.MenuItemID,
		&it.Name,
		&it.Price,
		&it.Quantity,
	)
	return it, err
}

func scanOrderItems(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]OrderItem, error) {
	var items []OrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
