// Package identity verifies the bearer tokens presented at the
// transport upgrade handshake. The identity provider itself is an
// external collaborator; this package only verifies what it issues,
// caching public key material process-wide.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken    = errors.New("identity: missing token")
	ErrInvalidToken    = errors.New("identity: invalid token")
	ErrExpiredToken    = errors.New("identity: expired token")
	ErrJWKSUnavailable = errors.New("identity: key material unavailable")
)

// Claims is what a verified bearer token yields: userId, displayName,
// avatarUrl.
type Claims struct {
	UserID      string `json:"sub"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	jwt.RegisteredClaims
}

// Verifier checks a bearer token string and returns the identity it
// carries.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// KeyCacheTTL is the minimum process-wide cache lifetime for fetched
// key material.
const KeyCacheTTL = time.Hour
