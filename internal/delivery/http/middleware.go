package http

import (
	"context"
	"net/http"
	"strings"

	"chatwire/internal/usecase"
)

type contextKey string

const UserContextKey contextKey = "user"

type AuthMiddleware struct {
	authUc usecase.AuthUsecase
}

func NewAuthMiddleware(authUc usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		authUc: authUc,
	}
}

// Authenticate accepts the access token from the Authorization header or,
// failing that, the session cookie (the websocket gate reads the same
// cookie).
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSON(w, http.StatusUnauthorized, Response{Message: "invalid authorization header format"})
				return
			}
			token = parts[1]
		} else if cookie, err := r.Cookie("jwt"); err == nil {
			token = cookie.Value
		}

		if token == "" {
			writeJSON(w, http.StatusUnauthorized, Response{Message: "authorization required"})
			return
		}

		claims, err := m.authUc.ValidateAccessToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, Response{Message: "invalid or expired token"})
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
