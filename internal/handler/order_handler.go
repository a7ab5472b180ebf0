package handler

import (
	"net/http"

	"bagvo/internal/middleware"
	"bagvo/internal/model"
	"bagvo/internal/service"

	"github.com/rs/zerolog"
)

const adminActor = "admin"

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req model.OrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, order)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	order, err := h.service.GetOrder(r.Context(), orderID, userID, middleware.IsAdmin(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, order)
}

// ListMine handles GET /api/user/orders requests.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	orders, err := h.service.ListUserOrders(r.Context(), userID, limit, offset)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, orders)
}

// List handles GET /api/admin/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	filter := model.OrderFilter{
		Status: model.OrderStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}
	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, orders)
}

// UpdateStatus handles PUT /api/orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "Status is required")
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), orderID, req.Status, adminActor, req.Note)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, order)
}

// Cancel handles POST /api/user/orders/{id}/cancel requests. The body is optional.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var req model.CancelRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	order, err := h.service.CancelOrder(r.Context(), orderID, userID, req.Reason)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, order)
}

// Refund handles POST /api/admin/orders/{id}/refund requests.
func (h *OrderHandler) Refund(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var req model.RefundRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	order, err := h.service.RefundOrder(r.Context(), orderID, req.Amount, adminActor, req.Reason)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, order)
}
