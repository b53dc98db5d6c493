package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tenantry/tenantry/internal/http/response"
	"github.com/tenantry/tenantry/pkg/auth"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireRole parses the bearer token and rejects requests whose session
// does not carry the expected role.
func RequireRole(role, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, "Invalid authorization header")
				return
			}
			raw := strings.TrimPrefix(authz, "Bearer ")
			claims, err := auth.Parse(raw, secret)
			if err != nil {
				response.Unauthorized(w, "Invalid authorization token")
				return
			}
			if claims.Role != role {
				response.Forbidden(w, "Insufficient role")
				return
			}
			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(CtxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
