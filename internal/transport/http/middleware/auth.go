package middleware

import (
	"context"
	"net/http"
	"strings"

	"rhmaster/internal/domain/auth"
	"rhmaster/internal/requestctx"
	"rhmaster/internal/transport/http/api"
)

// DemoOperator identifies requests when no operator account is configured.
const DemoOperator = "demo"

// RequireOperator rejects requests without a valid bearer token. With
// enabled false every request runs as DemoOperator.
func RequireOperator(secret string, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r.WithContext(requestctx.WithOperator(r.Context(), DemoOperator)))
				return
			}
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			claims, err := auth.ParseToken(secret, strings.TrimSpace(token))
			if err != nil || claims.Role != auth.RoleOperator {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithOperator(r.Context(), claims.Email)))
		})
	}
}

func GetOperator(ctx context.Context) string {
	return requestctx.GetOperator(ctx)
}
