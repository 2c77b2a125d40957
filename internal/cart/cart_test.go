package cart_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/eatsmart-resto/api/internal/cart"
	"github.com/eatsmart-resto/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func testItem(name, price string) database.MenuItem {
	var n pgtype.Numeric
	_ = n.Scan(price)
	return database.MenuItem{
		ID:        uuid.New(),
		Name:      name,
		Price:     n,
		Category:  "plats",
		Available: true,
	}
}

func TestAdd_NewItemCreatesLine(t *testing.T) {
	var c cart.Cart
	item := testItem("Magret de Canard", "26.90")

	c.Add(item)

	if len(c.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(c.Lines))
	}
	if c.Lines[0].Quantity != 1 {
		t.Errorf("quantity: got %d, want 1", c.Lines[0].Quantity)
	}
}

func TestAdd_RepeatMergesIntoExistingLine(t *testing.T) {
	var c cart.Cart
	item := testItem("Risotto aux Cèpes", "22.90")

	c.Add(item)
	c.Add(item)
	c.Add(item)

	if len(c.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1 (repeat add must merge)", len(c.Lines))
	}
	if c.Lines[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", c.Lines[0].Quantity)
	}
}

func TestAdd_DistinctItemsGetDistinctLines(t *testing.T) {
	var c cart.Cart
	c.Add(testItem("Tarte Tatin", "9.50"))
	c.Add(testItem("Eau Minérale", "4.50"))

	if len(c.Lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(c.Lines))
	}
}

func TestAdd_UnavailableItemStillAccepted(t *testing.T) {
	// Availability is a display concern; the cart does not police it.
	var c cart.Cart
	item := testItem("Foie Gras Maison", "18.50")
	item.Available = false

	c.Add(item)

	if len(c.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(c.Lines))
	}
}

func TestUpdateQuantity_SetsExactValue(t *testing.T) {
	var c cart.Cart
	item := testItem("Fondant au Chocolat", "10.50")
	c.Add(item)

	if err := c.UpdateQuantity(item.ID, 5); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if c.Lines[0].Quantity != 5 {
		t.Errorf("quantity: got %d, want 5", c.Lines[0].Quantity)
	}
}

func TestUpdateQuantity_RejectsZero(t *testing.T) {
	var c cart.Cart
	item := testItem("Crème Brûlée à la Vanille", "9.90")
	c.Add(item)
	c.Add(item)

	err := c.UpdateQuantity(item.ID, 0)
	if !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("error: got %v, want ErrInvalidQuantity", err)
	}
	// The rejected call must leave the line untouched.
	if c.Lines[0].Quantity != 2 {
		t.Errorf("quantity after rejected update: got %d, want 2", c.Lines[0].Quantity)
	}
}

func TestUpdateQuantity_RejectsNegative(t *testing.T) {
	var c cart.Cart
	item := testItem("Salade de Chèvre Chaud", "12.90")
	c.Add(item)

	if err := c.UpdateQuantity(item.ID, -3); !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("error: got %v, want ErrInvalidQuantity", err)
	}
}

func TestUpdateQuantity_UnknownItem(t *testing.T) {
	var c cart.Cart
	if err := c.UpdateQuantity(uuid.New(), 2); !errors.Is(err, cart.ErrLineNotFound) {
		t.Fatalf("error: got %v, want ErrLineNotFound", err)
	}
}

func TestRemove_DropsLine(t *testing.T) {
	var c cart.Cart
	keep := testItem("Vin Blanc - Chablis", "38.00")
	drop := testItem("Carpaccio de Saint-Jacques", "16.90")
	c.Add(keep)
	c.Add(drop)

	c.Remove(drop.ID)

	if len(c.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(c.Lines))
	}
	if c.Lines[0].Item.ID != keep.ID {
		t.Errorf("wrong line removed")
	}
}

func TestRemove_AbsentItemIsNoOp(t *testing.T) {
	var c cart.Cart
	c.Add(testItem("Filet de Bœuf Rossini", "32.50"))

	c.Remove(uuid.New())

	if len(c.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(c.Lines))
	}
}

func TestClear_EmptiesCart(t *testing.T) {
	var c cart.Cart
	c.Add(testItem("Tarte Tatin", "9.50"))
	c.Add(testItem("Eau Minérale", "4.50"))

	c.Clear()

	if len(c.Lines) != 0 {
		t.Errorf("lines after clear: got %d, want 0", len(c.Lines))
	}
}

func TestTotal_SumsPriceTimesQuantity(t *testing.T) {
	var c cart.Cart
	a := testItem("Crème Brûlée à la Vanille", "9.90")
	b := testItem("Fondant au Chocolat", "10.50")
	c.Add(a)
	c.Add(a) // 2 × 9.90
	c.Add(b) // 1 × 10.50

	// 19.80 + 10.50 = 30.30 exactly; float arithmetic would drift here.
	if got := c.Total().StringFixed(2); got != "30.30" {
		t.Errorf("total: got %s, want 30.30", got)
	}
}

func TestTotal_DecimalExact(t *testing.T) {
	var c cart.Cart
	a := testItem("Eau Minérale", "4.50")
	b := testItem("Salade de Chèvre Chaud", "12.90")
	c.Add(a)
	c.Add(b)
	_ = c.UpdateQuantity(b.ID, 3) // 4.50 + 38.70 = 43.20

	if got := c.Total().StringFixed(2); got != "43.20" {
		t.Errorf("total: got %s, want 43.20", got)
	}
}

func TestTotal_EmptyCartIsZero(t *testing.T) {
	var c cart.Cart
	if got := c.Total().StringFixed(2); got != "0.00" {
		t.Errorf("total: got %s, want 0.00", got)
	}
}

// --- Store tests ---

func TestStore_GetUnknownSessionReturnsEmptyCart(t *testing.T) {
	store := cart.NewStore()
	c := store.Get(uuid.New())
	if len(c.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(c.Lines))
	}
}

func TestStore_UpdateCreatesAndPersistsCart(t *testing.T) {
	store := cart.NewStore()
	session := uuid.New()
	item := testItem("Magret de Canard", "26.90")

	_, err := store.Update(session, func(c *cart.Cart) error {
		c.Add(item)
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	c := store.Get(session)
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 1 {
		t.Fatalf("cart not persisted across calls: %+v", c)
	}
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	store := cart.NewStore()
	s1 := uuid.New()
	s2 := uuid.New()

	_, _ = store.Update(s1, func(c *cart.Cart) error {
		c.Add(testItem("Tarte Tatin", "9.50"))
		return nil
	})

	if c := store.Get(s2); len(c.Lines) != 0 {
		t.Errorf("session 2 sees session 1's cart")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := cart.NewStore()
	session := uuid.New()
	item := testItem("Risotto aux Cèpes", "22.90")
	_, _ = store.Update(session, func(c *cart.Cart) error {
		c.Add(item)
		return nil
	})

	c := store.Get(session)
	c.Lines[0].Quantity = 99

	again := store.Get(session)
	if again.Lines[0].Quantity != 1 {
		t.Errorf("mutation through Get copy leaked into store")
	}
}

func TestStore_UpdateErrorLeavesCartUsable(t *testing.T) {
	store := cart.NewStore()
	session := uuid.New()
	item := testItem("Vin Rouge - Bordeaux Saint-Émilion", "45.00")
	_, _ = store.Update(session, func(c *cart.Cart) error {
		c.Add(item)
		return nil
	})

	_, err := store.Update(session, func(c *cart.Cart) error {
		return c.UpdateQuantity(item.ID, 0)
	})
	if !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("error: got %v, want ErrInvalidQuantity", err)
	}

	c := store.Get(session)
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 1 {
		t.Errorf("rejected update corrupted the cart: %+v", c)
	}
}

func TestStore_Delete(t *testing.T) {
	store := cart.NewStore()
	session := uuid.New()
	_, _ = store.Update(session, func(c *cart.Cart) error {
		c.Add(testItem("Eau Minérale", "4.50"))
		return nil
	})

	store.Delete(session)

	if c := store.Get(session); len(c.Lines) != 0 {
		t.Errorf("cart survived delete")
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	store := cart.NewStore()
	session := uuid.New()
	item := testItem("Fondant au Chocolat", "10.50")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(session, func(c *cart.Cart) error {
				c.Add(item)
				return nil
			})
		}()
	}
	wg.Wait()

	c := store.Get(session)
	if len(c.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(c.Lines))
	}
	if c.Lines[0].Quantity != 50 {
		t.Errorf("quantity: got %d, want 50", c.Lines[0].Quantity)
	}
}
