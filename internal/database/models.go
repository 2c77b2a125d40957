package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// MenuItem is one orderable dish or drink in the catalog.
type MenuItem struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	Category    string
	Available   bool
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Order is one placed order. The customer contact fields are flattened
// columns; created_at is assigned by the database at insert time, never
// by the client.
type Order struct {
	ID              uuid.UUID
	Status          string
	Total           pgtype.Numeric
	UserID          string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   pgtype.Text
	CustomerAddress pgtype.Text
	CustomerNotes   pgtype.Text
	CreatedAt       time.Time
}

// OrderItem is a denormalized snapshot of a purchased item. Name and price
// are captured at submission time; menu_item_id is a reference only and
// carries no foreign key, so historical orders survive catalog edits and
// deletions.
type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	Quantity   int32
}

// User is a staff account for the admin and kitchen surfaces.
type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	CreatedAt      time.Time
}
