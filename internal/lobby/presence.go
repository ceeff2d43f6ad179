package lobby

import (
	"context"

	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/room"
	"github.com/seednode-labs/dicee/internal/transport"
)

// onlineUserView is the client-facing projection of a presenceEntry.
type onlineUserView struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	AvatarSeed  string `json:"avatarSeed"`
}

func (l *Lobby) onlineUsers() []onlineUserView {
	out := make([]onlineUserView, 0, len(l.presence))
	for _, e := range l.presence {
		out = append(out, onlineUserView{UserID: e.UserID, DisplayName: e.DisplayName, AvatarSeed: e.AvatarSeed})
	}
	return out
}

// roomDirectoryView is the client-facing projection of a room's
// StatusSnapshot in the lobby's directory cache.
type roomDirectoryView struct {
	Code        string     `json:"code"`
	Phase       room.Phase `json:"phase"`
	SeatedCount int        `json:"seatedCount"`
	MaxSeats    int        `json:"maxSeats"`
	HostName    string     `json:"hostName"`
}

func (l *Lobby) roomDirectory() []roomDirectoryView {
	out := make([]roomDirectoryView, 0, len(l.rooms))
	for _, s := range l.rooms {
		if !s.Public {
			continue
		}
		out = append(out, roomDirectoryView{
			Code: s.Code, Phase: s.Phase, SeatedCount: s.SeatedCount, MaxSeats: s.MaxSeats, HostName: s.HostName,
		})
	}
	return out
}

type presenceInitPayload struct {
	Users []onlineUserView    `json:"onlineUsers"`
	Rooms []roomDirectoryView `json:"rooms"`
	Chat  []chatMessageView   `json:"chatHistory"`
}

type presencePayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	AvatarSeed  string `json:"avatarSeed"`
}

// handleConnect registers a lobby connection's presence (first
// connection for a user fans out PRESENCE_JOIN; subsequent tabs for the
// same user just attach: the lobby tolerates more than one live
// connection per user, unlike Room Core's single-current-connection
// rule).
func (l *Lobby) handleConnect(ctx context.Context, m lobbyConnectMsg) {
	conn := m.conn
	l.conns[conn.ID] = conn

	userID := m.claims.UserID
	entry, existed := l.presence[userID]
	if !existed {
		entry = &presenceEntry{
			UserID: userID, DisplayName: m.claims.DisplayName, AvatarSeed: m.claims.AvatarURL,
			conns: make(map[string]*transport.Conn),
		}
		l.presence[userID] = entry
	}
	entry.conns[conn.ID] = conn

	conn.Send(protocol.NewEvent(protocol.EvtPresenceInit, presenceInitPayload{
		Users: l.onlineUsers(), Rooms: l.roomDirectory(), Chat: chatMessageViews(l.chat.History()),
	}))

	if !existed {
		l.broadcast(protocol.NewEvent(protocol.EvtPresenceJoin, presencePayload{
			UserID: entry.UserID, DisplayName: entry.DisplayName, AvatarSeed: entry.AvatarSeed,
		}), conn.ID)
	}
}

// handleDisconnect tears down one lobby connection. Presence is only
// cleared, and PRESENCE_LEAVE only fanned out, once a user's last
// lobby connection is gone.
func (l *Lobby) handleDisconnect(ctx context.Context, m lobbyDisconnectMsg) {
	conn, ok := l.conns[m.connID]
	if !ok {
		return
	}
	delete(l.conns, m.connID)

	userID := conn.Attachment.UserID
	entry, ok := l.presence[userID]
	if !ok {
		return
	}
	delete(entry.conns, m.connID)
	if len(entry.conns) > 0 {
		return
	}

	delete(l.presence, userID)
	l.broadcast(protocol.NewEvent(protocol.EvtPresenceLeave, presencePayload{
		UserID: entry.UserID, DisplayName: entry.DisplayName, AvatarSeed: entry.AvatarSeed,
	}))
}

type roomUpdatePayload struct {
	Action string            `json:"action"`
	Room   roomDirectoryView `json:"room"`
}

// handleRoomStatus implements the room-directory side of presence:
// every status RPC from a Room Core for a public room either inserts or
// updates the directory cache entry and fans out LOBBY_ROOM_UPDATE. A
// private room is never cached; a cached room that turns private is
// removed with a "closed" update.
func (l *Lobby) handleRoomStatus(s room.StatusSnapshot) {
	_, existed := l.rooms[s.Code]

	if !s.Public {
		if existed {
			delete(l.rooms, s.Code)
			l.broadcast(protocol.NewEvent(protocol.EvtLobbyRoomUpdate, roomUpdatePayload{Action: "closed", Room: roomDirectoryView{Code: s.Code}}))
		}
		return
	}
	l.rooms[s.Code] = s

	action := "updated"
	if !existed {
		action = "created"
	}
	l.broadcast(protocol.NewEvent(protocol.EvtLobbyRoomUpdate, roomUpdatePayload{
		Action: action,
		Room:   roomDirectoryView{Code: s.Code, Phase: s.Phase, SeatedCount: s.SeatedCount, MaxSeats: s.MaxSeats, HostName: s.HostName},
	}))
}

// handleRoomClosed implements the "closed" half of LOBBY_ROOM_UPDATE
// when a room goes abandoned and its actor exits.
func (l *Lobby) handleRoomClosed(code string) {
	if _, ok := l.rooms[code]; !ok {
		return
	}
	delete(l.rooms, code)
	l.broadcast(protocol.NewEvent(protocol.EvtLobbyRoomUpdate, roomUpdatePayload{
		Action: "closed", Room: roomDirectoryView{Code: code},
	}))
}
