package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/eatsmart-resto/api/internal/database"
	"github.com/eatsmart-resto/api/internal/reporting"
	"github.com/go-chi/chi/v5"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries.
type ReportsStore interface {
	ListOrders(ctx context.Context) ([]database.Order, error)
	ListAllOrderItems(ctx context.Context) ([]database.OrderItem, error)
}

// ReportsHandler handles the dashboard aggregation endpoint.
type ReportsHandler struct {
	store ReportsStore
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers report endpoints. Expected to be mounted inside
// the authenticated group.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
}

type dashboardResponse struct {
	TotalOrders  int64                 `json:"total_orders"`
	TotalRevenue string                `json:"total_revenue"`
	PopularItems []reporting.ItemCount `json:"popular_items"`
	OrdersByDay  []reporting.DayCount  `json:"orders_by_day"`
}

// Dashboard aggregates all orders into the admin dashboard numbers. The
// aggregation runs over snapshots, so it reflects what customers actually
// paid regardless of later catalog edits. ?limit= caps the popular items
// list; it defaults to five.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	limit := reporting.DefaultPopularItems
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: list orders for dashboard: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListAllOrderItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list order items for dashboard: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TotalOrders:  reporting.TotalOrders(orders),
		TotalRevenue: reporting.TotalRevenue(orders).StringFixed(2),
		PopularItems: reporting.PopularItems(items, limit),
		OrdersByDay:  reporting.OrdersByDayOfWeek(orders),
	})
}
