package middleware

import (
	"context"
	"net/http"

	"postboard/app/auth"
)

// TokenResolver turns a bearer token into a caller id.
type TokenResolver interface {
	Resolve(raw string) (string, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller id in the request context.
func Authenticate(tokens TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err == nil {
				var userID string
				if userID, err = tokens.Resolve(raw); err == nil {
					next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
					return
				}
			}

			LoggerFrom(r.Context()).WithError(err).Debug("authentication failed")
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated")
		})
	}
}

// WithUserID returns a copy of ctx carrying the caller id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated caller id, or "" if none.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
