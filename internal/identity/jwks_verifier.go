package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier verifies RS256 tokens against a remote JWKS endpoint,
// caching resolved public keys for KeyCacheTTL and refetching the whole
// key set once that has passed or a kid is not cached. A fetch failure
// surfaces as ErrJWKSUnavailable, which the transport layer maps to a
// 503 rather than a 401, unless the token's kid is already cached, in
// which case the stale key is used.
type JWKSVerifier struct {
	url        string
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewJWKSVerifier(url string) *JWKSVerifier {
	return &JWKSVerifier{
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

func (v *JWKSVerifier) keyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	fresh := time.Since(v.fetchedAt) < KeyCacheTTL
	key, ok := v.keys[kid]
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refresh(ctx); err != nil {
		if ok {
			// Stale but present: serve it rather than fail a live request
			// on a transient identity-provider outage.
			return key, nil
		}
		return nil, ErrJWKSUnavailable
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	key, ok = v.keys[kid]
	if !ok {
		return nil, ErrInvalidToken
	}
	return key, nil
}

func (v *JWKSVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return ErrJWKSUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrJWKSUnavailable
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return ErrJWKSUnavailable
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()

	return nil
}

func parseRSAPublicKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}

	eBytesPadded := make([]byte, 8)
	copy(eBytesPadded[8-len(eBytes):], eBytes)

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(binary.BigEndian.Uint64(eBytesPadded)),
	}, nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, ErrMissingToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.keyForKid(ctx, kid)
	})

	switch {
	case err == nil:
		return claims, nil
	case errIsJWKSUnavailable(err):
		return Claims{}, ErrJWKSUnavailable
	case errIsExpired(err):
		return Claims{}, ErrExpiredToken
	default:
		return Claims{}, ErrInvalidToken
	}
}

func errIsJWKSUnavailable(err error) bool {
	return asTarget(err, ErrJWKSUnavailable)
}

func errIsExpired(err error) bool {
	return asTarget(err, jwt.ErrTokenExpired)
}

func asTarget(err, target error) bool {
	return errors.Is(err, target)
}
