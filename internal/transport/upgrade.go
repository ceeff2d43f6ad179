package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/seednode-labs/dicee/internal/identity"
)

// Upgrader is shared across connections as a single package-level
// instance; CheckOrigin is permissive since this server is accessed
// from arbitrary front-end origins.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandshakeResult is what a successful Upgrade yields: the live
// connection and the verified identity to build an Attachment from.
type HandshakeResult struct {
	Conn    *Conn
	Claims  identity.Claims
	Rejoin  bool
}

// HandshakeError distinguishes Unauthorized from ServiceUnavailable so
// the caller can pick the right HTTP status before upgrading.
type HandshakeError struct {
	Status int
	Err    error
}

func (e *HandshakeError) Error() string { return e.Err.Error() }
func (e *HandshakeError) Unwrap() error { return e.Err }

// Authenticate verifies the bearer token carried in the upgrade
// request's query string, without yet performing the actual protocol
// upgrade. Callers use this to decide the HTTP status before calling
// Upgrade: 401 on a missing, bad, or expired token; 503 on a
// transient identity-provider failure.
func Authenticate(ctx context.Context, r *http.Request, verifier identity.Verifier) (identity.Claims, bool, *HandshakeError) {
	token := r.URL.Query().Get("token")
	rejoin := r.URL.Query().Get("rejoin") == "true"

	claims, err := verifier.Verify(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrJWKSUnavailable):
			return identity.Claims{}, rejoin, &HandshakeError{Status: http.StatusServiceUnavailable, Err: err}
		default:
			return identity.Claims{}, rejoin, &HandshakeError{Status: http.StatusUnauthorized, Err: err}
		}
	}

	return claims, rejoin, nil
}

// Upgrade completes the websocket handshake and wraps the result as a
// Conn tagged with roomCode and the given attachment. Call Authenticate
// first; Upgrade itself performs no verification.
func Upgrade(w http.ResponseWriter, r *http.Request, roomCode string, attachment Attachment) (*Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	id, err := randomID()
	if err != nil {
		_ = ws.Close()
		return nil, err
	}

	return NewConn(ws, id, roomCode, attachment), nil
}

func randomID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
