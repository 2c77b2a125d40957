// Package cart implements the session shopping cart. A Cart is a plain value
// manipulated through methods that return errors instead of mutating on bad
// input, so every rule about quantities lives here and nowhere else.
package cart

import (
	"errors"

	"github.com/eatsmart-resto/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be >= 1")
	ErrLineNotFound    = errors.New("item not in cart")
)

// Line is one cart entry: the menu item as it looked when added, plus a count.
type Line struct {
	Item     database.MenuItem
	Quantity int32
}

// Cart holds at most one Line per menu item ID.
type Cart struct {
	Lines []Line
}

// Add puts an item in the cart. Adding an item already present bumps its
// quantity by one instead of creating a second line.
func (c *Cart) Add(item database.MenuItem) {
	for i := range c.Lines {
		if c.Lines[i].Item.ID == item.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{Item: item, Quantity: 1})
}

// UpdateQuantity sets the quantity of an existing line. Quantities below 1
// are rejected without touching the cart; line removal goes through Remove.
func (c *Cart) UpdateQuantity(itemID uuid.UUID, quantity int32) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].Item.ID == itemID {
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrLineNotFound
}

// Remove drops the line for the given item. Removing an absent item is a no-op.
func (c *Cart) Remove(itemID uuid.UUID) {
	for i := range c.Lines {
		if c.Lines[i].Item.ID == itemID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Total returns the sum of price × quantity over all lines, exact to the cent.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		price := numericToDecimal(l.Item.Price)
		total = total.Add(price.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return total
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
