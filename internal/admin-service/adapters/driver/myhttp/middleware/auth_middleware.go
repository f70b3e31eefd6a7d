package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"waste-collect/internal/admin-service/adapters/driver/myhttp/handle"
	"waste-collect/internal/identity"
)

// AuthMiddleware resolves the bearer token into an explicit Identity and
// stores it on the request context for handlers to pass onward.
type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

func (am *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			handle.JsonError(w, http.StatusUnauthorized, fmt.Errorf("empty bearer token"))
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		ident, err := identity.FromToken(tokenString, am.jwtSecret)
		if err != nil {
			handle.JsonError(w, http.StatusUnauthorized, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.WithContext(r.Context(), ident)))
	})
}
