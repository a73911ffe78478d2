package middleware

import (
	"context"
	"net/http"
)

const userIDKey contextKey = "user_id"

// Identity extracts the caller's user id from the X-User-ID header set by the
// authenticating proxy. Authentication itself happens upstream; this service
// only scopes jobs to an owner.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get("X-User-ID")
		ctx := context.WithValue(r.Context(), userIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user id, or "" when absent.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}
