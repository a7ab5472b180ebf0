package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bagvo/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		expectedStatus int
		expectHandler  bool
	}{
		{name: "Preflight request", method: http.MethodOptions, expectedStatus: http.StatusNoContent},
		{name: "GET request", method: http.MethodGet, expectedStatus: http.StatusOK, expectHandler: true},
		{name: "PUT request", method: http.MethodPut, expectedStatus: http.StatusOK, expectHandler: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := CORS(okHandler(&handlerCalled))

			req := httptest.NewRequest(tt.method, "/api/orders", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "Content-Type, X-User-ID, X-Admin-Key", w.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, "Retry-After", w.Header().Get("Access-Control-Expose-Headers"))
		})
	}
}

func TestIdentity(t *testing.T) {
	const validKey = "admin-secret-123"

	tests := []struct {
		name        string
		userID      string
		adminKey    string
		expectUser  string
		expectFound bool
		expectAdmin bool
	}{
		{name: "user header", userID: "user-1", expectUser: "user-1", expectFound: true},
		{name: "user header trimmed", userID: "  user-1 ", expectUser: "user-1", expectFound: true},
		{name: "anonymous", expectFound: false},
		{name: "valid admin key", adminKey: validKey, expectAdmin: true},
		{name: "invalid admin key", userID: "user-1", adminKey: "guess", expectUser: "user-1", expectFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				gotUser  string
				gotFound bool
				gotAdmin bool
			)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, gotFound = UserIDFromContext(r.Context())
				gotAdmin = IsAdmin(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.adminKey != "" {
				req.Header.Set(HeaderAdminKey, tt.adminKey)
			}

			Identity(validKey, zerolog.Nop())(next).ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expectUser, gotUser)
			assert.Equal(t, tt.expectFound, gotFound)
			assert.Equal(t, tt.expectAdmin, gotAdmin)
		})
	}
}

func TestIdentity_EmptyConfiguredKeyNeverGrantsAdmin(t *testing.T) {
	var gotAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAdmin = IsAdmin(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set(HeaderAdminKey, "anything")

	Identity("", zerolog.Nop())(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, gotAdmin)
}

func TestRequireUser(t *testing.T) {
	t.Run("identified caller passes", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req = req.WithContext(WithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()

		RequireUser(okHandler(&called)).ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("anonymous caller rejected", func(t *testing.T) {
		called := false
		w := httptest.NewRecorder()

		RequireUser(okHandler(&called)).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/orders", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeError(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, model.ErrCodeUnauthorised, resp.Error)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("admin passes", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req = req.WithContext(WithAdmin(req.Context()))
		w := httptest.NewRecorder()

		RequireAdmin(zerolog.Nop())(okHandler(&called)).ServeHTTP(w, req)

		assert.True(t, called)
	})

	t.Run("user rejected", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req = req.WithContext(WithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()

		RequireAdmin(zerolog.Nop())(okHandler(&called)).ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, model.ErrCodeForbidden, decodeError(t, w).Error)
	})
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
	}{
		{name: "Successful request", method: http.MethodGet, path: "/api/products", handlerStatus: http.StatusOK},
		{name: "Not found request", method: http.MethodGet, path: "/api/unknown", handlerStatus: http.StatusNotFound},
		{name: "Server error", method: http.MethodPost, path: "/api/orders", handlerStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			w := httptest.NewRecorder()
			Logging(zerolog.Nop())(testHandler).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.handlerStatus, w.Code)
		})
	}
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name           string
		shouldPanic    bool
		panicValue     any
		expectedStatus int
	}{
		{name: "No panic", expectedStatus: http.StatusOK},
		{name: "Panic with string", shouldPanic: true, panicValue: "something went wrong", expectedStatus: http.StatusInternalServerError},
		{name: "Panic with error", shouldPanic: true, panicValue: assert.AnError, expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.shouldPanic {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			})

			w := httptest.NewRecorder()
			Recovery(zerolog.Nop())(testHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.shouldPanic {
				assert.NotContains(t, w.Body.String(), "something went wrong")
				resp := decodeError(t, w)
				assert.False(t, resp.Success)
				assert.Equal(t, "Internal server error", resp.Message)
				assert.Equal(t, model.ErrCodeInternalError, resp.Error)
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusCreated, http.StatusConflict, http.StatusInternalServerError} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			w := httptest.NewRecorder()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			rw.WriteHeader(code)

			assert.Equal(t, code, rw.statusCode)
			assert.Equal(t, code, w.Code)
		})
	}
}
