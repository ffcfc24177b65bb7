package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"campus_catalog/internal/domain"
)

// TokenValidator is what the auth middleware needs from the authenticator.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Token, error)
}

type identityKeyT struct{}

var identityKey identityKeyT

// RequireAuth parses and validates the Bearer token, then stores the caller
// identity in the request context. Handlers read it back with IdentityFrom
// and pass it explicitly into the submission operation.
func RequireAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "authorization header is missing")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "authorization header is malformed")
				return
			}

			token, err := v.ValidateToken(parts[1])
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid claims")
				return
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "subject claim missing")
				return
			}
			name, _ := claims["name"].(string)

			ident := domain.Identity{UserID: sub, DisplayName: name}
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the authenticated identity, zero when the request
// never passed RequireAuth.
func IdentityFrom(r *http.Request) domain.Identity {
	ident, _ := r.Context().Value(identityKey).(domain.Identity)
	return ident
}
