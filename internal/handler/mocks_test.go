package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"bagvo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) orders(args mock.Arguments) ([]model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, userID string, req *model.OrderRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, userID, req))
}

func (m *MockOrderService) GetOrder(ctx context.Context, id uuid.UUID, userID string, isAdmin bool) (*model.Order, error) {
	return m.order(m.Called(ctx, id, userID, isAdmin))
}

func (m *MockOrderService) ListUserOrders(ctx context.Context, userID string, limit, offset int) ([]model.Order, error) {
	return m.orders(m.Called(ctx, userID, limit, offset))
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return m.orders(m.Called(ctx, filter))
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, target, actor, note string) (*model.Order, error) {
	return m.order(m.Called(ctx, id, target, actor, note))
}

func (m *MockOrderService) CancelOrder(ctx context.Context, id uuid.UUID, userID, reason string) (*model.Order, error) {
	return m.order(m.Called(ctx, id, userID, reason))
}

func (m *MockOrderService) RefundOrder(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor, reason string) (*model.Order, error) {
	return m.order(m.Called(ctx, id, amount, actor, reason))
}

// MockSettingsService is a mock implementation of SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context) (*model.StoreSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoreSettings), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, patch model.SettingsUpdate) (*model.StoreSettings, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoreSettings), args.Error(1)
}

// MockStatsService is a mock implementation of StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardStats), args.Error(1)
}

// envelope is the decoded form of both response shapes.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}
