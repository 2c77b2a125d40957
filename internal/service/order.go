package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eatsmart-resto/api/internal/cart"
	"github.com/eatsmart-resto/api/internal/database"
	"github.com/eatsmart-resto/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrCustomerName   = errors.New("customer name is required")
	ErrCustomerPhone  = errors.New("customer phone is required")
	ErrOrderNotFound  = errors.New("order not found")
	ErrStatusConflict = errors.New("order status changed, please retry")
)

// InvalidTransitionError reports an attempt to advance an order that has no
// next status, which with a strictly forward chain means it is completed.
type InvalidTransitionError struct {
	From string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot advance from %s", e.From)
}

// nextStatus is the strictly forward order lifecycle. Completed has no entry:
// it is terminal. The server computes the successor itself; clients never
// name a target status, so skips and reversals are impossible by construction.
var nextStatus = map[string]string{
	enum.OrderStatusPending:   enum.OrderStatusPreparing,
	enum.OrderStatusPreparing: enum.OrderStatusReady,
	enum.OrderStatusReady:     enum.OrderStatusCompleted,
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	SetOrderStatus(ctx context.Context, arg database.SetOrderStatusParams) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// SubmitRequest is the input for turning a cart into an order. Lines come
// straight from the session cart; the assembler never re-reads the catalog.
type SubmitRequest struct {
	UserID          string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	CustomerNotes   string
	Lines           []cart.Line
}

// SubmitResult is the created order with its line items.
type SubmitResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order submission and lifecycle.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// Submit validates the request, snapshots the cart lines, and inserts the
// order and its items in one transaction. Validation happens before the
// transaction opens, so a rejected submission touches nothing. The caller
// owns clearing the cart afterwards; Submit never does.
func (s *OrderService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if req.CustomerName == "" {
		return nil, ErrCustomerName
	}
	if req.CustomerPhone == "" {
		return nil, ErrCustomerPhone
	}

	userID := req.UserID
	if userID == "" {
		userID = enum.GuestUserID
	}

	// Total is computed once, here, from the snapshot prices.
	total := decimal.Zero
	for _, l := range req.Lines {
		price := numericToDecimal(l.Item.Price)
		total = total.Add(price.Mul(decimal.NewFromInt32(l.Quantity)))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		Status:          enum.OrderStatusPending,
		Total:           decimalToNumeric(total),
		UserID:          userID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   optionalText(req.CustomerEmail),
		CustomerAddress: optionalText(req.CustomerAddress),
		CustomerNotes:   optionalText(req.CustomerNotes),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    order.ID,
			MenuItemID: l.Item.ID,
			Name:       l.Item.Name,
			Price:      l.Item.Price,
			Quantity:   l.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &SubmitResult{Order: order, Items: items}, nil
}

// Advance moves an order one step along the lifecycle. The next status is
// derived from the stored current status, never from the request, and the
// update is guarded by the status we read: if another kitchen terminal won
// the race, zero rows come back and the caller is told to retry.
func (s *OrderService) Advance(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := s.newStore(tx)

	current, err := txStore.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}

	next, ok := nextStatus[current.Status]
	if !ok {
		return database.Order{}, &InvalidTransitionError{From: current.Status}
	}

	updated, err := txStore.SetOrderStatus(ctx, database.SetOrderStatusParams{
		ID:         orderID,
		Status:     next,
		FromStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrStatusConflict
		}
		return database.Order{}, fmt.Errorf("set order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	return updated, nil
}

// --- Helpers ---

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
