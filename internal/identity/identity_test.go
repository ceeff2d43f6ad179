package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHMACVerifierRoundTrip(t *testing.T) {
	v := NewHMACVerifier([]byte("test-secret"), "dicee")

	token, err := v.Issue("user-1", "Carmen", "https://example.com/a.png", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "Carmen", claims.DisplayName)
}

func TestHMACVerifierRejectsExpired(t *testing.T) {
	v := NewHMACVerifier([]byte("test-secret"), "dicee")

	token, err := v.Issue("user-1", "Carmen", "", -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestHMACVerifierRejectsGarbage(t *testing.T) {
	v := NewHMACVerifier([]byte("test-secret"), "dicee")

	_, err := v.Verify(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHMACVerifierRejectsMissingToken(t *testing.T) {
	v := NewHMACVerifier([]byte("test-secret"), "dicee")

	_, err := v.Verify(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingToken)
}

// rs256TokenWithKid builds a well-formed RS256 token carrying kid "k1"
// and a placeholder signature: enough to get past parsing and into the
// JWKS key lookup.
func rs256TokenWithKid() string {
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{"alg":"RS256","kid":"k1","typ":"JWT"}`)) + "." + enc([]byte(`{"sub":"user-1"}`)) + "." + enc([]byte("sig"))
}

func TestJWKSVerifierUnavailableWhenUnreachable(t *testing.T) {
	v := NewJWKSVerifier("http://127.0.0.1:0/.well-known/jwks.json")

	_, err := v.Verify(context.Background(), rs256TokenWithKid())
	require.ErrorIs(t, err, ErrJWKSUnavailable)
}

func TestJWKSVerifierRejectsHMACSignedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(jwksDocument{Keys: []jwk{}})
	}))
	defer srv.Close()

	v := NewJWKSVerifier(srv.URL)

	hv := NewHMACVerifier([]byte("irrelevant"), "dicee")
	token, err := hv.Issue("user-1", "Carmen", "", time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	require.Error(t, err)
}
