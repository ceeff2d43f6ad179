package lobby

import (
	"context"
	"encoding/json"
	"time"

	"github.com/seednode-labs/dicee/internal/protocol"
)

type sendInvitePayload struct {
	ToUserID string `json:"toUserId"`
	RoomCode string `json:"roomCode"`
}

type inviteReceivedPayload struct {
	InviteID  string    `json:"inviteId"`
	FromID    string    `json:"fromId"`
	FromName  string    `json:"fromName"`
	RoomCode  string    `json:"roomCode"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleSendInvite implements SEND_INVITE: route INVITE_RECEIVED to the
// target's lobby connection, with a server-generated id and expiresAt.
// Invites to a user with no live lobby connection are dropped; there
// is no offline invite inbox in this protocol.
func (l *Lobby) handleSendInvite(ctx context.Context, connID string, payload json.RawMessage) {
	conn := l.conns[connID]
	var p sendInvitePayload
	if json.Unmarshal(payload, &p) != nil {
		l.sendError(connID, protocol.ErrInvalidMessage, "malformed invite")
		return
	}

	fromID := conn.Attachment.UserID
	fromEntry, ok := l.presence[fromID]
	if !ok {
		return
	}

	target, ok := l.presence[p.ToUserID]
	if !ok {
		l.sendError(connID, protocol.ErrRoomNotFound, "recipient is not online")
		return
	}

	now := time.Now()
	inv := &invite{
		ID: uuidString(), FromID: fromID, FromName: fromEntry.DisplayName,
		ToID: p.ToUserID, RoomCode: p.RoomCode, CreatedAt: now, ExpiresAt: now.Add(InviteTTL),
	}
	l.invites[inv.ID] = inv

	l.sendToUser(target.UserID, protocol.NewEvent(protocol.EvtInviteReceived, inviteReceivedPayload{
		InviteID: inv.ID, FromID: inv.FromID, FromName: inv.FromName, RoomCode: inv.RoomCode, ExpiresAt: inv.ExpiresAt,
	}))
}

type cancelInvitePayload struct {
	InviteID string `json:"inviteId"`
}

type inviteCancelledPayload struct {
	InviteID string `json:"inviteId"`
}

// handleCancelInvite implements CANCEL_INVITE: only the sender may
// cancel. The invite's ExpiresAt is not checked, so an invite past it
// can still be cancelled. The recipient is notified with
// INVITE_CANCELLED if still online.
func (l *Lobby) handleCancelInvite(ctx context.Context, connID string, payload json.RawMessage) {
	conn := l.conns[connID]
	var p cancelInvitePayload
	if json.Unmarshal(payload, &p) != nil {
		l.sendError(connID, protocol.ErrInvalidMessage, "malformed invite id")
		return
	}

	inv, ok := l.invites[p.InviteID]
	if !ok {
		l.sendError(connID, protocol.ErrRequestNotFound, "invite not found")
		return
	}
	if inv.FromID != conn.Attachment.UserID {
		l.sendError(connID, protocol.ErrNotRequester, "caller did not send this invite")
		return
	}

	delete(l.invites, inv.ID)
	l.sendToUser(inv.ToID, protocol.NewEvent(protocol.EvtInviteCancelled, inviteCancelledPayload{InviteID: inv.ID}))
}
