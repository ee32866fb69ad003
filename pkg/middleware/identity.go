package middleware

import (
	"context"
	"net/http"
)

const userIDKey contextKey = "user_id"

// UserIDHeader carries the pre-authenticated caller identity. The gateway in
// front of this service resolves credentials; this core only performs
// ownership checks on the identity it is handed.
const UserIDHeader = "X-User-ID"

// Identity extracts the caller identity into the request context. Requests
// without an identity are rejected before reaching any handler.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)
			if userID == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Missing ` + UserIDHeader + ` header"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the caller identity placed by the Identity middleware.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
