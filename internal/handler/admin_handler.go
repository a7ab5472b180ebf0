package handler

import (
	"net/http"

	"bagvo/internal/model"
	"bagvo/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler serves store settings and the back-office dashboard.
type AdminHandler struct {
	settings service.SettingsService
	stats    service.StatsService
	logger   zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(settings service.SettingsService, stats service.StatsService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		settings: settings,
		stats:    stats,
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

// GetSettings handles GET /api/settings requests.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/admin/settings requests.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch model.SettingsUpdate
	if err := decodeBody(w, r, &patch); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	settings, err := h.settings.Update(r.Context(), patch)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, settings)
}

// Dashboard handles GET /api/admin/stats requests.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, stats)
}
