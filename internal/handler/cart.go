package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/eatsmart-resto/api/internal/cart"
	"github.com/eatsmart-resto/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// cartSessionCookie identifies a visitor's cart. It is issued on first
// contact with any cart endpoint and carries no authentication weight.
const cartSessionCookie = "cart_session"

// CartCatalog is the slice of the database the cart handlers need: looking
// up the item being added so its name and price can be snapshotted into the
// cart line. Satisfied by *database.Queries.
type CartCatalog interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
}

// CartHandler handles the session cart endpoints.
type CartHandler struct {
	carts   *cart.Store
	catalog CartCatalog
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *cart.Store, catalog CartCatalog) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog}
}

// RegisterRoutes registers all cart endpoints. They are public; the cart
// belongs to the browser session, not to a signed-in user.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/items", h.AddItem)
	r.Patch("/items/{id}", h.UpdateItem)
	r.Delete("/items/{id}", h.RemoveItem)
	r.Delete("/", h.Clear)
}

// --- Request / Response types ---

type addCartItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
}

type updateCartItemRequest struct {
	Quantity int32 `json:"quantity"`
}

type cartLineResponse struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Quantity   int32     `json:"quantity"`
	LineTotal  string    `json:"line_total"`
}

type cartResponse struct {
	Items []cartLineResponse `json:"items"`
	Total string             `json:"total"`
}

func toCartResponse(c cart.Cart) cartResponse {
	items := make([]cartLineResponse, len(c.Lines))
	for i, line := range c.Lines {
		price := numericToString(line.Item.Price)
		total := decimal.Zero
		if d, err := decimal.NewFromString(price); err == nil {
			total = d.Mul(decimal.NewFromInt(int64(line.Quantity)))
		}
		items[i] = cartLineResponse{
			MenuItemID: line.Item.ID,
			Name:       line.Item.Name,
			Price:      price,
			Quantity:   line.Quantity,
			LineTotal:  total.StringFixed(2),
		}
	}
	return cartResponse{Items: items, Total: c.Total().StringFixed(2)}
}

// sessionID returns the cart session for this request, minting a cookie on
// first contact.
func sessionID(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if c, err := r.Cookie(cartSessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id
		}
	}

	id := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     cartSessionCookie,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// --- Handlers ---

// Get returns the current cart, empty for a fresh session.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Get(sessionID(w, r))
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// AddItem puts one unit of a menu item into the cart, merging with an
// existing line for the same item.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.MenuItemID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu_item_id is required"})
		return
	}

	item, err := h.catalog.GetMenuItem(r.Context(), req.MenuItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item for cart: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	c, err := h.carts.Update(sessionID(w, r), func(c *cart.Cart) error {
		c.Add(item)
		return nil
	})
	if err != nil {
		log.Printf("ERROR: add cart item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// UpdateItem sets the quantity of an existing cart line. Quantities below
// one are rejected; removal is its own endpoint.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c, err := h.carts.Update(sessionID(w, r), func(c *cart.Cart) error {
		return c.UpdateQuantity(itemID, req.Quantity)
	})
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be >= 1"})
		case errors.Is(err, cart.ErrLineNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not in cart"})
		default:
			log.Printf("ERROR: update cart item: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// RemoveItem drops a line from the cart. Removing an item that is not in
// the cart is not an error.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	c, err := h.carts.Update(sessionID(w, r), func(c *cart.Cart) error {
		c.Remove(itemID)
		return nil
	})
	if err != nil {
		log.Printf("ERROR: remove cart item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.carts.Delete(sessionID(w, r))
	w.WriteHeader(http.StatusNoContent)
}
