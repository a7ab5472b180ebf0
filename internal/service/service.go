package service

import (
	"context"

	"bagvo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService defines the order lifecycle.
type OrderService interface {
	// PlaceOrder validates the request, reserves stock and persists the order atomically.
	PlaceOrder(ctx context.Context, userID string, req *model.OrderRequest) (*model.Order, error)

	// GetOrder returns the order when userID owns it or isAdmin is set.
	GetOrder(ctx context.Context, id uuid.UUID, userID string, isAdmin bool) (*model.Order, error)

	// ListUserOrders returns the caller's orders, newest first.
	ListUserOrders(ctx context.Context, userID string, limit, offset int) ([]model.Order, error)

	// ListOrders returns orders for the back office.
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus moves an order along the fulfilment state machine.
	UpdateStatus(ctx context.Context, id uuid.UUID, target, actor, note string) (*model.Order, error)

	// CancelOrder cancels the caller's order and puts its stock back.
	CancelOrder(ctx context.Context, id uuid.UUID, userID, reason string) (*model.Order, error)

	// RefundOrder refunds part or all of a paid order.
	RefundOrder(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor, reason string) (*model.Order, error)
}

// SettingsService owns the store-wide settings document.
type SettingsService interface {
	// Get returns the current settings, creating the defaults on first access.
	Get(ctx context.Context) (*model.StoreSettings, error)

	// Update applies a partial update and returns the new settings.
	Update(ctx context.Context, patch model.SettingsUpdate) (*model.StoreSettings, error)
}

// StatsService aggregates back-office figures.
type StatsService interface {
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
}
