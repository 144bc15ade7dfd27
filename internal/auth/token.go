package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/filaflow/filaflow/internal/roles"
	"github.com/filaflow/filaflow/internal/shared"
)

// Claims is the JWT payload carried by the session cookie.
type Claims struct {
	Name     string   `json:"name,omitempty"`
	Role     string   `json:"role,omitempty"`
	ClientID string   `json:"clientId,omitempty"`
	UnityIDs []string `json:"unityIds,omitempty"`
	QueueIDs []string `json:"queueIds,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses identity tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the identity.
func (t *TokenIssuer) Issue(id *shared.Identity) (string, error) {
	if id == nil || id.ID == "" {
		return "", errors.New("auth: identity required")
	}
	now := t.now()
	claims := Claims{
		Name:     id.Name,
		Role:     string(id.Role),
		ClientID: id.ClientID,
		UnityIDs: id.UnityIDs,
		QueueIDs: id.QueueIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse validates the token signature and expiry and rebuilds the identity.
func (t *TokenIssuer) Parse(token string) (*shared.Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("auth: invalid token")
	}
	return &shared.Identity{
		ID:       claims.Subject,
		Name:     claims.Name,
		Role:     roles.Role(claims.Role),
		ClientID: claims.ClientID,
		UnityIDs: claims.UnityIDs,
		QueueIDs: claims.QueueIDs,
	}, nil
}

// TTL exposes the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}
