package auth

import (
	"net/http"
	"strings"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/shared"
)

// Middleware loads the signed identity from the session cookie or an
// Authorization bearer header.
type Middleware struct {
	tokens     *TokenIssuer
	cookieName string
}

// NewMiddleware constructs the identity middleware.
func NewMiddleware(tokens *TokenIssuer, cookieName string) *Middleware {
	return &Middleware{tokens: tokens, cookieName: cookieName}
}

// RequireIdentity rejects requests without a valid identity with 401.
func (m *Middleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := m.extractToken(r)
		if raw == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		id, err := m.tokens.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), id)))
	})
}

func (m *Middleware) extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
