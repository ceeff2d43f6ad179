package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/transport"
)

// createRoomResponse is what GET /rooms returns: a freshly minted room
// code a client can immediately connect a websocket to.
type createRoomResponse struct {
	Code string `json:"code"`
}

func (s *Server) serveCreateRoom() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		rm, err := s.rooms.Create(ctx)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		securityHeaders(s.cfg, w)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createRoomResponse{Code: rm.Code})
	}
}

// serveRoomWS upgrades a client connection into a seat/spectator slot
// in the named room: authenticate first, then upgrade, then hand the
// connection to Room Core.
func (s *Server) serveRoomWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("code")

		claims, rejoin, hsErr := transport.Authenticate(r.Context(), r, s.verifier)
		if hsErr != nil {
			http.Error(w, hsErr.Error(), hsErr.Status)
			return
		}

		attachment := transport.Attachment{
			UserID: claims.UserID, DisplayName: claims.DisplayName, AvatarSeed: claims.AvatarURL,
			ConnectedAt: time.Now(),
		}

		conn, err := transport.Upgrade(w, r, code, attachment)
		if err != nil {
			s.logf("WS: room upgrade failed: %v", err)
			return
		}

		rm := s.rooms.Resume(r.Context(), code)
		rm.Connect(conn, claims, rejoin)

		go conn.WritePump()
		conn.ReadPump(func(frame protocol.InboundFrame) {
			rm.Send(conn.ID, frame)
		})
		rm.Disconnect(conn.ID)
	}
}

// serveLobbyWS upgrades a client connection into the singleton lobby.
func (s *Server) serveLobbyWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		claims, _, hsErr := transport.Authenticate(r.Context(), r, s.verifier)
		if hsErr != nil {
			http.Error(w, hsErr.Error(), hsErr.Status)
			return
		}

		attachment := transport.Attachment{
			UserID: claims.UserID, DisplayName: claims.DisplayName, AvatarSeed: claims.AvatarURL,
			ConnectedAt: time.Now(),
		}

		conn, err := transport.Upgrade(w, r, "", attachment)
		if err != nil {
			s.logf("WS: lobby upgrade failed: %v", err)
			return
		}

		s.lobby.Connect(conn, claims)

		go conn.WritePump()
		conn.ReadPump(func(frame protocol.InboundFrame) {
			s.lobby.Send(conn.ID, frame)
		})
		s.lobby.Disconnect(conn.ID)
	}
}
