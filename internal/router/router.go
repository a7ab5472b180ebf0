package router

import (
	"net/http"

	"bagvo/internal/handler"
	"bagvo/internal/middleware"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "bagvo-api"

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	adminHandler *handler.AdminHandler,
	adminKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	user := middleware.RequireUser
	admin := middleware.RequireAdmin(logger)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalog and settings (public)
	mux.HandleFunc("GET /api/products", productHandler.GetAll)
	mux.HandleFunc("GET /api/products/{id}", productHandler.GetByID)
	mux.HandleFunc("GET /api/settings", adminHandler.GetSettings)

	// Customer order flow
	mux.Handle("POST /api/orders", user(http.HandlerFunc(orderHandler.Create)))
	mux.HandleFunc("GET /api/orders/{id}", orderHandler.GetByID)
	mux.Handle("GET /api/user/orders", user(http.HandlerFunc(orderHandler.ListMine)))
	mux.Handle("POST /api/user/orders/{id}/cancel", user(http.HandlerFunc(orderHandler.Cancel)))

	// Back office
	mux.Handle("PUT /api/orders/{id}/status", admin(http.HandlerFunc(orderHandler.UpdateStatus)))
	mux.Handle("POST /api/admin/orders/{id}/refund", admin(http.HandlerFunc(orderHandler.Refund)))
	mux.Handle("GET /api/admin/orders", admin(http.HandlerFunc(orderHandler.List)))
	mux.Handle("GET /api/admin/stats", admin(http.HandlerFunc(adminHandler.Dashboard)))
	mux.Handle("PUT /api/admin/settings", admin(http.HandlerFunc(adminHandler.UpdateSettings)))

	// Apply middleware in order: Recovery -> Logging -> CORS -> otelhttp -> Identity
	var h http.Handler = mux
	h = middleware.Identity(adminKey, logger)(h)
	h = otelhttp.NewHandler(h, serviceName,
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
