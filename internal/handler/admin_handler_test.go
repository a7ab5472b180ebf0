package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bagvo/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminHandler_GetSettings(t *testing.T) {
	settingsSvc := new(MockSettingsService)
	h := NewAdminHandler(settingsSvc, new(MockStatsService), zerolog.Nop())

	defaults := model.DefaultStoreSettings()
	settingsSvc.On("Get", mock.Anything).Return(&defaults, nil)

	w := httptest.NewRecorder()
	h.GetSettings(w, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got model.StoreSettings
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
	assert.True(t, got.TaxRate.Equal(decimal.RequireFromString("0.18")))
	assert.Equal(t, "INR", got.Currency)
}

func TestAdminHandler_UpdateSettings(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", body: `{"shippingFee":75}`, expectedStatus: http.StatusOK, expectService: true},
		{name: "Rejected value", body: `{"taxRate":2}`, mockError: model.NewValidationError(model.ErrCodeInvalidSettings, "Tax rate must be between 0 and 1"), expectedStatus: http.StatusBadRequest, expectService: true},
		{name: "Invalid JSON", body: `{"taxRate":`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settingsSvc := new(MockSettingsService)
			h := NewAdminHandler(settingsSvc, new(MockStatsService), zerolog.Nop())

			if tt.expectService {
				updated := model.DefaultStoreSettings()
				var ret *model.StoreSettings
				if tt.mockError == nil {
					ret = &updated
				}
				settingsSvc.On("Update", mock.Anything, mock.AnythingOfType("model.SettingsUpdate")).Return(ret, tt.mockError)
			}

			w := httptest.NewRecorder()
			h.UpdateSettings(w, adminRequest(http.MethodPut, "/api/admin/settings", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			settingsSvc.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_Dashboard(t *testing.T) {
	statsSvc := new(MockStatsService)
	h := NewAdminHandler(new(MockSettingsService), statsSvc, zerolog.Nop())

	statsSvc.On("Dashboard", mock.Anything).Return(&model.DashboardStats{
		TotalOrders:    2,
		TotalRevenue:   decimal.RequireFromString("486.5"),
		OrdersByStatus: map[string]int{"placed": 2},
		TopProducts:    []model.ProductSales{{ProductID: "P001", Name: "Canvas Tote", Sold: 3}},
	}, nil)

	w := httptest.NewRecorder()
	h.Dashboard(w, adminRequest(http.MethodGet, "/api/admin/stats", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalRevenue":486.5`)
	assert.Contains(t, w.Body.String(), `"sold":3`)
}
