package room

import (
	"context"
	"time"

	"github.com/seednode-labs/dicee/internal/protocol"
)

// highlightPayload is sent to a room's host over their room connection
// when the Lobby Core brokers a REQUEST_JOIN against this room. The
// closed event set has no dedicated "join request received" event for
// the host side, so this reuses LOBBY_HIGHLIGHT, the generic
// attention-getter, without prescribing a payload shape.
type highlightPayload struct {
	Kind            string `json:"kind"`
	RequestID       string `json:"requestId"`
	RequesterID     string `json:"requesterId"`
	RequesterName   string `json:"requesterName"`
	RequesterAvatar string `json:"requesterAvatar"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

func (r *Room) handleJoinRequestRPC(ctx context.Context, m joinRequestMsg) {
	req, err := r.JoinRequests.Create(r.Code, m.requesterID, m.requesterName, m.requesterAvatar, time.Now())
	if err != nil {
		m.reply <- joinRequestReply{err: err}
		return
	}

	r.persistJoinRequests(ctx)

	r.sendToUser(r.HostID, protocol.NewEvent(protocol.EvtLobbyHighlight, highlightPayload{
		Kind: "join_request", RequestID: req.ID, RequesterID: req.RequesterID,
		RequesterName: req.RequesterName, RequesterAvatar: req.RequesterAvatar, ExpiresAt: req.ExpiresAt,
	}))

	m.reply <- joinRequestReply{request: req}
}

func (r *Room) handleJoinCancelRPC(ctx context.Context, m joinCancelMsg) {
	req, err := r.JoinRequests.Cancel(m.requestID, m.callerID, time.Now())
	if err != nil {
		m.reply <- joinRequestReply{err: err}
		return
	}

	r.persistJoinRequests(ctx)
	m.reply <- joinRequestReply{request: req}
}
