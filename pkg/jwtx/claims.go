// Package jwtx signs and verifies the service's HS256 access and refresh
// tokens.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. Access tokens are short-lived; refresh tokens carry the
// session across access-token expiry.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token type values carried in the "typ" claim so an access token can never
// be replayed as a refresh token or vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the claims embedded in both token types. Additive changes only,
// to preserve compatibility with already-issued tokens.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType distinguishes access from refresh tokens.
	TokenType string `json:"typ"`

	// SID ties the access and refresh token of one login together.
	SID string `json:"sid,omitempty"`

	// Username of the authenticated user.
	Username string `json:"username,omitempty"`

	// Role is the user's role name (ADMIN, STAFF, DISPATCHER, PATIENT).
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(subject, sid, username, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return newClaims(TokenTypeAccess, subject, sid, username, role, issuer, ttl, now)
}

// NewRefreshClaims builds claims for a refresh token sharing the session ID
// of its access-token counterpart.
func NewRefreshClaims(subject, sid, username, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return newClaims(TokenTypeRefresh, subject, sid, username, role, issuer, ttl, now)
}

func newClaims(typ, subject, sid, username, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenType: typ,
		SID:       sid,
		Username:  username,
		Role:      role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// IsAccess reports whether the claims belong to an access token.
func (c *Claims) IsAccess() bool { return c.TokenType == TokenTypeAccess }

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool { return c.TokenType == TokenTypeRefresh }

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
