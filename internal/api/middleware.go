package api

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	isTestKey contextKey = "isTest"
)

// requireUser rejects requests without an X-User-ID header and stashes
// the identity in the request context. X-Test-User marks synthetic
// traffic that must never reach external systems.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, isTestKey, r.Header.Get("X-Test-User") == "true")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) (userID string, isTest bool) {
	userID, _ = ctx.Value(userIDKey).(string)
	isTest, _ = ctx.Value(isTestKey).(bool)
	return userID, isTest
}
