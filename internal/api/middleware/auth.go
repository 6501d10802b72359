package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dom/snake-game-api/internal/api/response"
	"github.com/dom/snake-game-api/internal/auth"
	"github.com/dom/snake-game-api/internal/service"
)

type contextKey string

const (
	ClaimsKey contextKey = "claims"

	// AccessTokenCookie is set on login and accepted in place of the
	// Authorization header.
	AccessTokenCookie = "access_token"
)

func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				response.Unauthorized(w, "Not authenticated")
				return
			}

			claims, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				response.Unauthorized(w, "Could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the token from "Authorization: Bearer <token>", or from
// the access token cookie when no header is sent.
func BearerToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", false
		}
		return token, true
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}
