package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, name, description, price, category, available, image, created_at, updated_at`

const listMenuItems = `
SELECT ` + menuItemColumns + `
FROM menu_items
ORDER BY category, name
`

// ListMenuItems returns the full catalog ordered by category then name.
func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

const listMenuItemsByCategory = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE category = $1
ORDER BY name
`

// ListMenuItemsByCategory returns the catalog entries for one category.
func (q *Queries) ListMenuItemsByCategory(ctx context.Context, category string) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByCategory, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

const getMenuItem = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1
`

// GetMenuItem returns one catalog entry. Absence surfaces as pgx.ErrNoRows.
func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, id)
	return scanMenuItem(row)
}

const createMenuItem = `
INSERT INTO menu_items (name, description, price, category, available, image)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	Name        string
	Description string
	Price       pgtype.Numeric
	Category    string
	Available   bool
	Image       string
}

// CreateMenuItem inserts a catalog entry; the database assigns the ID.
func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name, arg.Description, arg.Price, arg.Category, arg.Available, arg.Image)
	return scanMenuItem(row)
}

const updateMenuItem = `
UPDATE menu_items
SET name        = COALESCE($2, name),
    description = COALESCE($3, description),
    price       = COALESCE($4, price),
    category    = COALESCE($5, category),
    available   = COALESCE($6, available),
    image       = COALESCE($7, image),
    updated_at  = now()
WHERE id = $1
RETURNING ` + menuItemColumns

// UpdateMenuItemParams carries a partial update: invalid (NULL) fields keep
// their stored value via COALESCE.
type UpdateMenuItemParams struct {
	ID          uuid.UUID
	Name        pgtype.Text
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    pgtype.Text
	Available   pgtype.Bool
	Image       pgtype.Text
}

// UpdateMenuItem applies a partial update to one catalog entry.
func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID, arg.Name, arg.Description, arg.Price, arg.Category, arg.Available, arg.Image)
	return scanMenuItem(row)
}

const deleteMenuItem = `
DELETE FROM menu_items
WHERE id = $1
RETURNING id
`

// DeleteMenuItem removes one catalog entry. Absence surfaces as pgx.ErrNoRows.
func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteMenuItem, id).Scan(&deleted)
	return deleted, err
}

const deleteAllMenuItems = `
DELETE FROM menu_items
`

// DeleteAllMenuItems wipes the catalog and reports how many rows went away.
// Used by the seeder to avoid duplicate sample data.
func (q *Queries) DeleteAllMenuItems(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteAllMenuItems)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// --- row scanning ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(row rowScanner) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&m.Price,
		&m.Category,
		&m.Available,
		&m.Image,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func scanMenuItems(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]MenuItem, error) {
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
