package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"notekeeper/auth"
)

type ctxKey string

const usernameKey ctxKey = "notekeeper.username"

// WithUsername stores the authenticated username in ctx.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromContext returns the username stored by RequireAuth.
func UsernameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(usernameKey).(string)
	return v, ok && v != ""
}

// RequireAuth rejects requests without a valid bearer token and puts the
// token subject in the request context.
func RequireAuth(tokens *auth.Tokens, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}

			tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || strings.TrimSpace(tokenStr) == "" {
				log.Debug("bearer prefix missing")
				http.Error(w, "Invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(tokenStr))
			if err != nil {
				log.Debug("token rejected", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), claims.Subject)))
		})
	}
}
