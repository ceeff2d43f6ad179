// Package httpserver provides the route wiring (httprouter mux,
// security headers, graceful shutdown) for dicee's HTTP surface: the
// room/lobby websocket upgrade
// routes, health/version/robots endpoints, a shareable room QR code,
// and optional pprof registration.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/seednode-labs/dicee/internal/config"
	"github.com/seednode-labs/dicee/internal/identity"
	"github.com/seednode-labs/dicee/internal/lobby"
	"github.com/seednode-labs/dicee/internal/room"
)

const requestTimeout = 10 * time.Second

// Server owns the httprouter mux and the collaborators route handlers
// dispatch into.
type Server struct {
	cfg      *config.Config
	version  string
	rooms    *room.Manager
	lobby    *lobby.Lobby
	verifier identity.Verifier
}

// NewServer wires a Server against the already-constructed room
// manager, lobby and token verifier (assembled in cmd/dicee/main.go).
func NewServer(cfg *config.Config, version string, rooms *room.Manager, lob *lobby.Lobby, verifier identity.Verifier) *Server {
	return &Server{cfg: cfg, version: version, rooms: rooms, lobby: lob, verifier: verifier}
}

func (s *Server) logf(format string, args ...any) {
	if !s.cfg.Verbose {
		return
	}
	log.Printf(format, args...)
}

func securityHeaders(cfg *config.Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")

	if cfg.Scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func newErrorPage(title, body string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	b.WriteString(`<link rel="icon" type="image/svg+xml" href="/favicon.svg">`)
	b.WriteString(`<style>html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	fmt.Fprintf(&b, "<title>%s</title></head>", title)
	fmt.Fprintf(&b, "<body><a href=\"/\">%s</a></body></html>", body)
	return b.String()
}

func (s *Server) serveVersion() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(s.cfg, w)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "dicee v"+s.version+"\n")
	}
}

func (s *Server) serveHealthCheck() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(s.cfg, w)
		io.WriteString(w, "Ok\n")
	}
}

func (s *Server) serveRobots() httprouter.Handle {
	const data = `User-agent: GPTBot
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: ClaudeBot
Disallow: /`
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(s.cfg, w)
		io.WriteString(w, data)
	}
}

// router builds the mux with every route registered.
func (s *Server) router() *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(s.cfg, w)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, newErrorPage("Server Error", "An error has occurred. Please try again."))
	}

	prefix := strings.TrimSuffix(s.cfg.Prefix, "/")

	mux.GET(prefix+"/", s.serveHomePage())
	mux.GET(prefix+"/favicon.svg", s.serveAsset("favicon.svg", "image/svg+xml"))
	mux.GET(prefix+"/healthz", s.serveHealthCheck())
	mux.GET(prefix+"/robots.txt", s.serveRobots())
	mux.GET(prefix+"/version", s.serveVersion())

	mux.GET(prefix+"/rooms", s.serveCreateRoom())
	mux.GET(prefix+"/rooms/:code/ws", s.serveRoomWS())
	mux.GET(prefix+"/rooms/:code/qr", s.serveRoomQR())
	mux.GET(prefix+"/lobby/ws", s.serveLobbyWS())

	if s.cfg.Profile {
		s.registerProfileHandlers(mux)
	}

	return mux
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	mux := s.router()

	srv := &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.Port)),
		Handler:           mux,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       requestTimeout,
		ReadHeaderTimeout: requestTimeout,
		WriteTimeout:      requestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		s.logf("SERVE: Listening on %s://%s%s/", s.cfg.Scheme(), srv.Addr, s.cfg.Prefix)
		if s.cfg.TLSCert != "" && s.cfg.TLSKey != "" {
			err = srv.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
