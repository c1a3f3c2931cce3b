package middleware

import (
	"net/http"
	"strings"

	"github.com/technosupport/ts-shopguard/internal/auth"
	"github.com/technosupport/ts-shopguard/internal/tokens"
)

type TokenValidator interface {
	Validate(tokenString string) (*tokens.Claims, error)
}

type JWTAuth struct {
	tokens    TokenValidator
	blacklist auth.TokenBlacklist
}

func NewJWTAuth(t TokenValidator, b auth.TokenBlacklist) *JWTAuth {
	return &JWTAuth{tokens: t, blacklist: b}
}

// Middleware verifies the bearer token, rejects revoked sessions and injects
// the AuthContext. Blacklist lookup failures fail closed.
func (m *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.Validate(tokenString)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		revoked, err := m.blacklist.IsRevoked(r.Context(), claims.ID)
		if err != nil || revoked {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ac := &AuthContext{
			OwnerID:  claims.OwnerID,
			Email:    claims.Email,
			ShopName: claims.ShopName,
			TokenID:  claims.ID,
		}
		next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), ac)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		// The websocket endpoint cannot set headers from the browser; allow
		// the token as a query parameter there.
		return r.URL.Query().Get("token")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
