package room

import (
	"context"

	"github.com/seednode-labs/dicee/internal/identity"
	"github.com/seednode-labs/dicee/internal/joinrequest"
	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/transport"
)

// connectMsg, disconnectMsg, frameMsg and alarmMsg are the sum type
// carried on Room.inbox, the single serialization point for all
// mutation of a room's state.
type connectMsg struct {
	conn   *transport.Conn
	claims identity.Claims
	rejoin bool
}

type disconnectMsg struct {
	connID string
}

type frameMsg struct {
	connID string
	frame  protocol.InboundFrame
}

type alarmMsg struct{}

// StatusSnapshot is what Room reports to the lobby's periodic
// status-update RPC.
type StatusSnapshot struct {
	Code        string
	Phase       Phase
	SeatedCount int
	MaxSeats    int
	Public      bool
	HostName    string
}

type statusRequestMsg struct {
	reply chan StatusSnapshot
}

// joinRequestMsg is the Lobby Core's REQUEST_JOIN RPC, brokering a
// JoinRequest to the target room's host, delivered through the same
// single-writer inbox as any client frame.
type joinRequestMsg struct {
	requesterID     string
	requesterName   string
	requesterAvatar string
	reply           chan joinRequestReply
}

type joinRequestReply struct {
	request joinrequest.Request
	err     error
}

// joinCancelMsg is the Lobby Core's CANCEL_JOIN_REQUEST RPC.
type joinCancelMsg struct {
	requestID string
	callerID  string
	reply     chan joinRequestReply
}

// Start launches the room's actor goroutine. Exactly one must run per
// Room; Manager.Create and Manager.Resume ensure this.
func (r *Room) Start(ctx context.Context) {
	go r.run(ctx)
}

// Send enqueues a client-originated frame onto the room's inbox.
func (r *Room) Send(connID string, frame protocol.InboundFrame) {
	r.inbox <- frameMsg{connID: connID, frame: frame}
}

// Connect enqueues a freshly upgraded connection for seat assignment.
func (r *Room) Connect(conn *transport.Conn, claims identity.Claims, rejoin bool) {
	r.inbox <- connectMsg{conn: conn, claims: claims, rejoin: rejoin}
}

// Disconnect enqueues a closed connection's teardown.
func (r *Room) Disconnect(connID string) {
	r.inbox <- disconnectMsg{connID: connID}
}

// FireAlarm enqueues a notification that this room's alarm is due; the
// actor reloads alarm_data itself rather than trusting a payload on
// the message, per the resumption contract.
func (r *Room) FireAlarm() {
	select {
	case r.inbox <- alarmMsg{}:
	default:
	}
}

// Status requests a synchronous snapshot for the lobby directory RPC.
func (r *Room) Status() StatusSnapshot {
	reply := make(chan StatusSnapshot, 1)
	r.inbox <- statusRequestMsg{reply: reply}
	return <-reply
}

// RequestJoin brokers a lobby join request into the room. It blocks
// until the room's actor has created the request and notified the
// host.
func (r *Room) RequestJoin(requesterID, requesterName, requesterAvatar string) (joinrequest.Request, error) {
	reply := make(chan joinRequestReply, 1)
	r.inbox <- joinRequestMsg{
		requesterID: requesterID, requesterName: requesterName, requesterAvatar: requesterAvatar,
		reply: reply,
	}
	res := <-reply
	return res.request, res.err
}

// CancelJoinRequest brokers a lobby CANCEL_JOIN_REQUEST into the room.
func (r *Room) CancelJoinRequest(requestID, callerID string) (joinrequest.Request, error) {
	reply := make(chan joinRequestReply, 1)
	r.inbox <- joinCancelMsg{requestID: requestID, callerID: callerID, reply: reply}
	res := <-reply
	return res.request, res.err
}

func (r *Room) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-r.inbox:
			r.reload(ctx)
			r.dispatch(ctx, m)
		}
	}
}

func (r *Room) dispatch(ctx context.Context, m any) {
	switch v := m.(type) {
	case connectMsg:
		r.handleConnect(ctx, v)
	case disconnectMsg:
		r.handleDisconnectConn(ctx, v)
	case frameMsg:
		r.handleFrame(ctx, v)
	case alarmMsg:
		r.handleAlarmFire(ctx)
	case statusRequestMsg:
		v.reply <- r.statusSnapshot()
	case joinRequestMsg:
		r.handleJoinRequestRPC(ctx, v)
	case joinCancelMsg:
		r.handleJoinCancelRPC(ctx, v)
	}

	if r.mgr != nil {
		r.mgr.notifyStatus(r.statusSnapshot())
	}
}

func (r *Room) statusSnapshot() StatusSnapshot {
	hostName := ""
	if s, ok := r.Seats[r.HostID]; ok {
		hostName = s.DisplayName
	}
	return StatusSnapshot{
		Code:        r.Code,
		Phase:       r.Phase,
		SeatedCount: r.seatedCount(),
		MaxSeats:    r.Settings.MaxSeats,
		Public:      r.Settings.Public,
		HostName:    hostName,
	}
}
