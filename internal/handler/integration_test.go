//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eatsmart-resto/api/internal/cart"
	"github.com/eatsmart-resto/api/internal/config"
	"github.com/eatsmart-resto/api/internal/database"
	"github.com/eatsmart-resto/api/internal/router"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// TestIntegrationFlow exercises the full ordering lifecycle against a real
// PostgreSQL database: seed a staff account, build the menu through the API,
// fill a session cart, submit the order, walk it through the kitchen
// workflow, and check the dashboard totals at the end.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	pgContainer, connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	if err := database.Migrate(connStr); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	cfg := &config.Config{
		Port:        "8081",
		DatabaseURL: connStr,
		JWTSecret:   "integration-test-secret",
		CORSOrigins: "http://localhost:5173",
	}
	queries := database.New(pool)
	carts := cart.NewStore()

	r := router.New(cfg, queries, pool, carts)

	server := httptest.NewServer(r)
	defer server.Close()

	// The browser: a client with a cookie jar so the cart session sticks.
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	browser := &http.Client{Jar: jar}

	// --- 1. Create staff user (manual DB insert to bootstrap) ---
	createStaffUser(t, ctx, queries)

	// --- 2. Login ---
	token := login(t, server, "staff@eatsmart.fr", "password123")

	// --- 3. Build the menu through the API ---
	magret := createMenuItem(t, server, token, "Magret de Canard", "26.90", "plats")
	magretID := uuid.MustParse(magret["id"].(string))
	tarte := createMenuItem(t, server, token, "Tarte Tatin", "9.50", "desserts")
	tarteID := uuid.MustParse(tarte["id"].(string))

	// --- 4. Public menu browsing needs no token ---
	menu := httpGetJSONList(t, http.DefaultClient, server, "/menu", "")
	if len(menu) != 2 {
		t.Fatalf("menu listing: got %d items, want 2", len(menu))
	}

	// --- 5. Fill the cart: two magrets and one tarte ---
	httpPostJSON(t, browser, server, "/cart/items", map[string]interface{}{"menu_item_id": magretID.String()}, "")
	httpPostJSON(t, browser, server, "/cart/items", map[string]interface{}{"menu_item_id": magretID.String()}, "")
	cartResp := httpPostJSON(t, browser, server, "/cart/items", map[string]interface{}{"menu_item_id": tarteID.String()}, "")
	if cartResp["total"].(string) != "63.30" {
		t.Fatalf("cart total: got %s, want 63.30", cartResp["total"])
	}

	// --- 6. Submit the order ---
	orderResp := httpPostJSON(t, browser, server, "/orders", map[string]interface{}{
		"customer_name":  "Marie Dupont",
		"customer_phone": "0612345678",
		"customer_email": "marie@example.fr",
	}, "")
	orderID := uuid.MustParse(orderResp["id"].(string))
	if orderResp["status"].(string) != "pending" {
		t.Fatalf("new order status: got %s, want pending", orderResp["status"])
	}
	if orderResp["total"].(string) != "63.30" {
		t.Fatalf("order total: got %s, want 63.30 (snapshot verification failed)", orderResp["total"])
	}
	items, ok := orderResp["items"].([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("order items: got %v, want 2 lines", orderResp["items"])
	}

	// --- 7. The cart is cleared by a successful submission ---
	cartAfter := httpGetJSON(t, browser, server, "/cart", "")
	if lines := cartAfter["items"].([]interface{}); len(lines) != 0 {
		t.Fatalf("cart after submission: got %d lines, want 0", len(lines))
	}

	// --- 8. Walk the order through the kitchen workflow ---
	for _, want := range []string{"preparing", "ready", "completed"} {
		advanced := httpPostJSON(t, http.DefaultClient, server, "/orders/"+orderID.String()+"/advance", nil, token)
		if advanced["status"].(string) != want {
			t.Fatalf("advance: got status %s, want %s", advanced["status"], want)
		}
	}

	// --- 9. A completed order cannot advance further ---
	if status := httpStatus(t, server, "POST", "/orders/"+orderID.String()+"/advance", token); status != http.StatusConflict {
		t.Fatalf("advance completed order: got status %d, want 409", status)
	}

	// --- 10. The catalog can change without touching the order's snapshot ---
	httpDelete(t, server, "/menu/"+magretID.String(), token)
	orderAfter := httpGetJSON(t, http.DefaultClient, server, "/orders/"+orderID.String(), token)
	if orderAfter["total"].(string) != "63.30" {
		t.Fatalf("order total after catalog edit: got %s, want 63.30", orderAfter["total"])
	}

	// --- 11. Dashboard totals ---
	dashboard := httpGetJSON(t, http.DefaultClient, server, "/reports/dashboard", token)
	if dashboard["total_orders"].(float64) != 1 {
		t.Fatalf("dashboard total_orders: got %v, want 1", dashboard["total_orders"])
	}
	if dashboard["total_revenue"].(string) != "63.30" {
		t.Fatalf("dashboard total_revenue: got %s, want 63.30", dashboard["total_revenue"])
	}
	popular := dashboard["popular_items"].([]interface{})
	first := popular[0].(map[string]interface{})
	if first["name"].(string) != "Magret de Canard" || first["count"].(float64) != 2 {
		t.Fatalf("dashboard popular_items: got %v, want Magret de Canard with count 2", first)
	}
	if days := dashboard["orders_by_day"].([]interface{}); len(days) != 7 {
		t.Fatalf("dashboard orders_by_day: got %d buckets, want 7", len(days))
	}

	t.Logf("Integration test passed: container=%s, order=%s", pgContainer.GetContainerID(), orderID)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("eatsmart_test"),
		tcpostgres.WithUsername("eatsmart"),
		tcpostgres.WithPassword("eatsmart"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pgContainer, connStr, cleanup
}

func createStaffUser(t *testing.T, ctx context.Context, queries *database.Queries) {
	t.Helper()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := queries.CreateUser(ctx, database.CreateUserParams{
		Email:          "staff@eatsmart.fr",
		HashedPassword: string(hashedPassword),
		FullName:       "Test Staff",
	}); err != nil {
		t.Fatalf("create staff user: %v", err)
	}
}

// --- API call helpers ---

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	resp := httpPostJSON(t, http.DefaultClient, server, "/auth/login", map[string]interface{}{
		"email":    email,
		"password": password,
	}, "")
	token, ok := resp["access_token"].(string)
	if !ok || token == "" {
		t.Fatalf("login failed: no access_token in response: %+v", resp)
	}
	return token
}

func createMenuItem(t *testing.T, server *httptest.Server, token, name, price, category string) map[string]interface{} {
	t.Helper()
	return httpPostJSON(t, http.DefaultClient, server, "/menu", map[string]interface{}{
		"name":     name,
		"price":    price,
		"category": category,
	}, token)
}

// --- HTTP helpers ---

func httpPostJSON(t *testing.T, client *http.Client, server *httptest.Server, path string, body map[string]interface{}, token string) map[string]interface{} {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest("POST", server.URL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("POST %s: status %d, body: %v", path, resp.StatusCode, errResp)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func httpGetJSON(t *testing.T, client *http.Client, server *httptest.Server, path string, token string) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	httpGetInto(t, client, server, path, token, &result)
	return result
}

func httpGetJSONList(t *testing.T, client *http.Client, server *httptest.Server, path string, token string) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	httpGetInto(t, client, server, path, token, &result)
	return result
}

func httpGetInto(t *testing.T, client *http.Client, server *httptest.Server, path, token string, out interface{}) {
	t.Helper()
	req, err := http.NewRequest("GET", server.URL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("GET %s: status %d, body: %v", path, resp.StatusCode, errResp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// httpStatus performs a request where a non-2xx status is the expectation,
// not a failure.
func httpStatus(t *testing.T, server *httptest.Server, method, path, token string) int {
	t.Helper()
	req, err := http.NewRequest(method, server.URL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func httpDelete(t *testing.T, server *httptest.Server, path, token string) {
	t.Helper()
	if status := httpStatus(t, server, "DELETE", path, token); status != http.StatusNoContent {
		t.Fatalf("DELETE %s: status %d, want 204", path, status)
	}
}
