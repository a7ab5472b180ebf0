package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bagvo/internal/coupon"
	"bagvo/internal/database"
	"bagvo/internal/handler"
	"bagvo/internal/model"
	"bagvo/internal/repository"
	"bagvo/internal/router"
	"bagvo/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAdminKey = "test-admin-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the migrated schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProduct inserts a product offered in Black and Tan, sizes M and L.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, id string, price int64, stock int) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, name, image_url, category, price_selling, price_mrp, stock, colors, sizes)
		VALUES ($1, $2, $3, 'bags', $4, $5, $6, $7, $8)
	`, id, "Bag "+id, "https://img.example.com/"+id+".jpg",
		decimal.NewFromInt(price), decimal.NewFromInt(price*2), stock,
		[]string{"Black", "Tan"}, []string{"M", "L"},
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", id, err)
	}
}

// SeedUserWithAddress creates a user with one complete saved address and returns the address id.
func SeedUserWithAddress(t *testing.T, pool *pgxpool.Pool, userID string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	if _, err := pool.Exec(ctx, `INSERT INTO users (id, name) VALUES ($1, $2)`, userID, "User "+userID); err != nil {
		t.Fatalf("failed to seed user %s: %v", userID, err)
	}

	addressID := uuid.New()
	data := map[string]any{
		"name":        "Asha Rao",
		"mobile":      "9876543210",
		"addressLine": "12 MG Road",
		"city":        "Bengaluru",
		"state":       "Karnataka",
		"zip":         560001,
	}
	if _, err := pool.Exec(ctx, `INSERT INTO user_addresses (id, user_id, data) VALUES ($1, $2, $3)`,
		addressID, userID, data); err != nil {
		t.Fatalf("failed to seed address for %s: %v", userID, err)
	}

	return addressID
}

// SeedCoupon stores a coupon through the repository used at startup imports.
func SeedCoupon(t *testing.T, pool *pgxpool.Pool, c model.Coupon) {
	t.Helper()

	repo := repository.NewCouponRepository(pool, zerolog.Nop())
	if err := repo.Upsert(context.Background(), &c); err != nil {
		t.Fatalf("failed to seed coupon %s: %v", c.Code, err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"order_status_history", "order_items", "orders",
		"user_addresses", "users", "coupons", "products", "store_settings",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// ProductStock reads the current stock and sold counters of a product.
func ProductStock(t *testing.T, pool *pgxpool.Pool, id string) (stock, sold int) {
	t.Helper()

	err := pool.QueryRow(context.Background(),
		`SELECT stock, sold FROM products WHERE id = $1`, id).Scan(&stock, &sold)
	require.NoError(t, err)
	return stock, sold
}

// NewTestServer wires the production dependency graph against the test database.
func NewTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	pool := testDB.Pool

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	settingsRepo := repository.NewSettingsRepository(pool, logger)
	statsRepo := repository.NewStatsRepository(pool, logger)

	txConfig := repository.DefaultTxConfig()
	txConfig.MaxAttempts = 10
	txRunner := repository.NewTxRunner(pool, txConfig, logger)

	settingsService := service.NewSettingsService(settingsRepo, logger)
	orderService := service.NewOrderService(
		txRunner,
		orderRepo,
		productRepo,
		addressRepo,
		coupon.NewValidator(couponRepo, logger),
		settingsService,
		nil,
		service.OrderPolicy{},
		logger,
	)

	return router.New(
		handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		handler.NewOrderHandler(orderService, logger),
		handler.NewAdminHandler(settingsService, service.NewStatsService(statsRepo, logger), logger),
		testAdminKey,
		logger,
	)
}

// envelope is the decoded success or error body.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// Do sends a request as userID (when set) or as admin (when asAdmin is set) and decodes the envelope.
func Do(t *testing.T, server http.Handler, method, path string, body any, userID string, asAdmin bool) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if asAdmin {
		req.Header.Set("X-Admin-Key", testAdminKey)
	}
	w := httptest.NewRecorder()

	server.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env), "status %d", w.Code)
	return w.Code, env
}

// DecodeData unmarshals the data field of a success envelope.
func DecodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.True(t, env.Success, "expected success, got %s: %s", env.Error, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
