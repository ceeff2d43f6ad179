package lobby

import (
	"context"
	"encoding/json"
	"time"

	"github.com/seednode-labs/dicee/internal/chat"
	"github.com/seednode-labs/dicee/internal/joinrequest"
	"github.com/seednode-labs/dicee/internal/protocol"
)

// chatMessageView is the wire projection of a chat.Message: an alias of
// chat.Message, so lobby chat has exactly the same shape as room chat.
type chatMessageView = chat.Message

func chatMessageViews(msgs []chat.Message) []chatMessageView {
	return msgs
}

func (l *Lobby) sendError(connID string, code protocol.ErrorCode, message string) {
	conn, ok := l.conns[connID]
	if !ok {
		return
	}
	conn.Send(protocol.NewEvent(protocol.EvtLobbyError, protocol.ErrorPayload{Code: code, Message: message}))
}

// sendJoinRequestError uses the dedicated JOIN_REQUEST_ERROR event
// rather than the generic LOBBY_ERROR, matching it alongside
// JOIN_REQUEST_SENT/CANCELLED.
func (l *Lobby) sendJoinRequestError(connID string, code protocol.ErrorCode, message string) {
	conn, ok := l.conns[connID]
	if !ok {
		return
	}
	conn.Send(protocol.NewEvent(protocol.EvtJoinRequestError, protocol.ErrorPayload{Code: code, Message: message}))
}

// handleFrame dispatches one inbound lobby frame to its handler,
// mirroring internal/room.handleFrame's switch-on-CommandType shape.
func (l *Lobby) handleFrame(ctx context.Context, m lobbyFrameMsg) {
	conn, ok := l.conns[m.connID]
	if !ok {
		return
	}

	switch m.frame.Type {
	case protocol.CmdPing:
		conn.Send(protocol.NewEvent(protocol.EvtPong, nil))
	case protocol.CmdLobbyChat:
		l.handleLobbyChat(ctx, m.connID, m.frame.Payload)
	case protocol.CmdGetRooms:
		conn.Send(protocol.NewEvent(protocol.EvtLobbyRoomsList, l.roomDirectory()))
	case protocol.CmdGetOnlineUsers:
		conn.Send(protocol.NewEvent(protocol.EvtLobbyOnlineUsers, l.onlineUsers()))
	case protocol.CmdRequestJoin:
		l.handleRequestJoin(ctx, m.connID, m.frame.Payload)
	case protocol.CmdCancelJoinRequest:
		l.handleCancelJoinRequest(ctx, m.connID, m.frame.Payload)
	case protocol.CmdSendInvite:
		l.handleSendInvite(ctx, m.connID, m.frame.Payload)
	case protocol.CmdCancelInvite:
		l.handleCancelInvite(ctx, m.connID, m.frame.Payload)
	default:
		l.sendError(m.connID, protocol.ErrUnknownCommand, "unrecognized command type")
	}
}

type lobbyChatPayload struct {
	Content string `json:"content"`
}

func (l *Lobby) handleLobbyChat(ctx context.Context, connID string, payload json.RawMessage) {
	conn := l.conns[connID]
	var p lobbyChatPayload
	if json.Unmarshal(payload, &p) != nil {
		l.sendError(connID, protocol.ErrInvalidMessage, "malformed content")
		return
	}

	userID := conn.Attachment.UserID
	entry, ok := l.presence[userID]
	if !ok {
		return
	}

	evt, err := l.chat.HandleText(userID, entry.DisplayName, p.Content)
	if err != nil {
		l.sendError(connID, chatErrorCode(err), err.Error())
		return
	}

	l.broadcast(protocol.NewEvent(protocol.EvtLobbyChatMessage, evt.Message))
}

func chatErrorCode(err error) protocol.ErrorCode {
	switch err {
	case chat.ErrRateLimited:
		return protocol.ErrRateLimited
	case chat.ErrMessageTooLong:
		return protocol.ErrMessageTooLong
	case chat.ErrMessageNotFound:
		return protocol.ErrMessageNotFound
	default:
		return protocol.ErrInvalidMessage
	}
}

type requestJoinPayload struct {
	RoomCode string `json:"roomCode"`
}

func joinRequestErrorCode(err error) protocol.ErrorCode {
	switch err {
	case joinrequest.ErrDuplicateRequest:
		return protocol.ErrDuplicateRequest
	case joinrequest.ErrMaxRequestsExceeded:
		return protocol.ErrMaxRequestsExceeded
	case joinrequest.ErrRequestExpired:
		return protocol.ErrRequestExpired
	case joinrequest.ErrInvalidStatusTransition:
		return protocol.ErrInvalidStatusTransition
	case joinrequest.ErrNotRequester:
		return protocol.ErrNotRequester
	case joinrequest.ErrRequestNotFound:
		return protocol.ErrRequestNotFound
	default:
		return protocol.ErrInvalidMessage
	}
}

type joinRequestSentPayload struct {
	RequestID string    `json:"requestId"`
	RoomCode  string    `json:"roomCode"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleRequestJoin implements REQUEST_JOIN: broker the request into
// the target room and confirm it to the requester.
func (l *Lobby) handleRequestJoin(ctx context.Context, connID string, payload json.RawMessage) {
	conn := l.conns[connID]
	var p requestJoinPayload
	if json.Unmarshal(payload, &p) != nil {
		l.sendError(connID, protocol.ErrInvalidMessage, "malformed roomCode")
		return
	}

	target, ok := l.broker.Get(p.RoomCode)
	if !ok {
		l.sendJoinRequestError(connID, protocol.ErrRoomNotFound, "room not found")
		return
	}

	userID := conn.Attachment.UserID
	entry := l.presence[userID]

	req, err := target.RequestJoin(userID, entry.DisplayName, entry.AvatarSeed)
	if err != nil {
		l.sendJoinRequestError(connID, joinRequestErrorCode(err), err.Error())
		return
	}

	conn.Send(protocol.NewEvent(protocol.EvtJoinRequestSent, joinRequestSentPayload{
		RequestID: req.ID, RoomCode: req.RoomCode, ExpiresAt: req.ExpiresAt,
	}))
}

type cancelJoinRequestPayload struct {
	RoomCode  string `json:"roomCode"`
	RequestID string `json:"requestId"`
}

// handleCancelJoinRequest implements CANCEL_JOIN_REQUEST.
func (l *Lobby) handleCancelJoinRequest(ctx context.Context, connID string, payload json.RawMessage) {
	conn := l.conns[connID]
	var p cancelJoinRequestPayload
	if json.Unmarshal(payload, &p) != nil {
		l.sendError(connID, protocol.ErrInvalidMessage, "malformed request")
		return
	}

	target, ok := l.broker.Get(p.RoomCode)
	if !ok {
		l.sendJoinRequestError(connID, protocol.ErrRoomNotFound, "room not found")
		return
	}

	userID := conn.Attachment.UserID
	req, err := target.CancelJoinRequest(p.RequestID, userID)
	if err != nil {
		l.sendJoinRequestError(connID, joinRequestErrorCode(err), err.Error())
		return
	}

	conn.Send(protocol.NewEvent(protocol.EvtJoinRequestCancelled, joinRequestSentPayload{
		RequestID: req.ID, RoomCode: req.RoomCode, ExpiresAt: req.ExpiresAt,
	}))
}
