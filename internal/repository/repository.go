package repository

import (
	"context"
	"time"

	"bagvo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxRunner runs units of work inside a database transaction.
type TxRunner interface {
	// WithTx commits when fn returns nil and rolls back otherwise.
	// Serialization failures and deadlocks are retried with backoff; when the
	// attempts are exhausted the error wraps model.ErrConcurrentUpdate.
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDTx retrieves a single product by its ID within the provided transaction.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*model.Product, error)

	// DecrementStock atomically takes quantity units out of stock and adds them to sold.
	// It reports false when the product has fewer than quantity units left.
	DecrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) (bool, error)

	// RestoreStock returns quantity units to stock and takes them off sold.
	RestoreStock(ctx context.Context, tx pgx.Tx, id string, quantity int) error
}

// AddressRepository reads the address book of a user.
type AddressRepository interface {
	// GetByID returns the address only when it belongs to userID.
	GetByID(ctx context.Context, userID string, addressID uuid.UUID) (*model.SavedAddress, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// NextOrderNumber allocates a new human-readable order number.
	NextOrderNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error)

	// CreateOrder inserts the order, its items and its status history within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order by its ID along with its items and history.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDForUpdate retrieves and row-locks an order within the provided transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Order, error)

	// List returns orders for the back office, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateOrder persists status, payment and refund fields of an existing order.
	UpdateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// AppendStatusHistory records a status change.
	AppendStatusHistory(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, change model.StatusChange) error
}

// CouponRepository defines data access for the coupon store.
type CouponRepository interface {
	// GetByCode retrieves and row-locks a coupon within the provided transaction.
	GetByCode(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error)

	// IncrementUsage counts one redemption, reporting false once the usage limit is reached.
	IncrementUsage(ctx context.Context, tx pgx.Tx, code string) (bool, error)

	// Upsert creates or replaces a coupon definition, keeping its usage count.
	Upsert(ctx context.Context, coupon *model.Coupon) error
}

// SettingsRepository persists the single store settings row.
type SettingsRepository interface {
	// Init inserts defaults when no settings exist yet and returns the stored settings.
	Init(ctx context.Context, defaults model.StoreSettings) (*model.StoreSettings, error)

	// Save overwrites the stored settings.
	Save(ctx context.Context, settings *model.StoreSettings) error
}

// StatsRepository runs back-office aggregations.
type StatsRepository interface {
	// Dashboard aggregates order counts, revenue and best sellers.
	Dashboard(ctx context.Context, topN int) (*model.DashboardStats, error)
}
