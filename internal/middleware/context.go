package middleware

import "context"

type contextKey int

const (
	userIDKey contextKey = iota
	adminFlagKey
)

// WithUserID returns a context carrying the caller's user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the caller's user ID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithAdmin marks the request as coming from the back office.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminFlagKey, true)
}

// IsAdmin reports whether the request presented a valid admin key.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(adminFlagKey).(bool)
	return admin
}
