package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seednode-labs/dicee/internal/identity"
)

type fakeVerifier struct {
	claims identity.Claims
	err    error
}

func (f fakeVerifier) Verify(ctx context.Context, token string) (identity.Claims, error) {
	return f.claims, f.err
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/rooms/ABC234/ws?token=bad", nil)
	_, _, hErr := Authenticate(context.Background(), req, fakeVerifier{err: identity.ErrInvalidToken})
	require.NotNil(t, hErr)
	require.Equal(t, http.StatusUnauthorized, hErr.Status)
}

func TestAuthenticateReturns503OnJWKSUnavailable(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/rooms/ABC234/ws?token=whatever", nil)
	_, _, hErr := Authenticate(context.Background(), req, fakeVerifier{err: identity.ErrJWKSUnavailable})
	require.NotNil(t, hErr)
	require.Equal(t, http.StatusServiceUnavailable, hErr.Status)
}

func TestAuthenticateParsesRejoinFlag(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/rooms/ABC234/ws?token=good&rejoin=true", nil)
	claims, rejoin, hErr := Authenticate(context.Background(), req, fakeVerifier{claims: identity.Claims{UserID: "u1"}})
	require.Nil(t, hErr)
	require.True(t, rejoin)
	require.Equal(t, "u1", claims.UserID)
}
