package router

import (
	"net/http"
	"strings"

	"github.com/eatsmart-resto/api/internal/cart"
	"github.com/eatsmart-resto/api/internal/config"
	"github.com/eatsmart-resto/api/internal/database"
	"github.com/eatsmart-resto/api/internal/handler"
	mw "github.com/eatsmart-resto/api/internal/middleware"
	"github.com/eatsmart-resto/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up. The public
// surface is what the ordering site needs: browsing the menu, working a
// session cart, submitting an order, and logging in. Everything the staff
// touches sits behind authentication.
func New(cfg *config.Config, queries *database.Queries, pool service.TxBeginner, carts *cart.Store) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	menuHandler := handler.NewMenuHandler(queries)
	cartHandler := handler.NewCartHandler(carts, queries)
	reportsHandler := handler.NewReportsHandler(queries)

	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	orderHandler := handler.NewOrderHandler(orderService, queries, carts, cfg.JWTSecret)

	// Auth: login, refresh, and logout are public; /me needs a token.
	r.Route("/auth", func(r chi.Router) {
		authHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			authHandler.RegisterProtectedRoutes(r)
		})
	})

	// Cart: public; the session cookie is the only identity involved.
	r.Route("/cart", cartHandler.RegisterRoutes)

	// Menu: reads are public, mutations are staff-only.
	r.Route("/menu", func(r chi.Router) {
		menuHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			menuHandler.RegisterAdminRoutes(r)
		})
	})

	// Orders: submission is public, the rest is staff-only.
	r.Route("/orders", func(r chi.Router) {
		orderHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			orderHandler.RegisterStaffRoutes(r)
		})
	})

	// Reports: staff-only.
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Route("/reports", reportsHandler.RegisterRoutes)
	})

	return r
}
