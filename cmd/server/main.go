package main

import (
	"context"
	"log"
	"net/http"

	"github.com/eatsmart-resto/api/internal/cart"
	"github.com/eatsmart-resto/api/internal/config"
	"github.com/eatsmart-resto/api/internal/database"
	"github.com/eatsmart-resto/api/internal/router"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("ERROR: create connection pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ERROR: ping database: %v", err)
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("ERROR: run migrations: %v", err)
	}

	queries := database.New(pool)
	carts := cart.NewStore()

	r := router.New(cfg, queries, pool, carts)

	log.Printf("starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("ERROR: server stopped: %v", err)
	}
}
