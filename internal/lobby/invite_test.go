package lobby

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seednode-labs/dicee/internal/transport"
)

func connectTestUser(l *Lobby, connID, userID, displayName string) *transport.Conn {
	conn := transport.NewConn(nil, connID, "", transport.Attachment{UserID: userID, DisplayName: displayName})
	l.conns[connID] = conn
	l.presence[userID] = &presenceEntry{UserID: userID, DisplayName: displayName}
	return conn
}

func TestHandleSendInviteDropsWhenRecipientOffline(t *testing.T) {
	l := newTestLobby()
	connectTestUser(l, "c1", "u1", "Ada")

	payload, _ := json.Marshal(sendInvitePayload{ToUserID: "ghost", RoomCode: "ABC123"})
	l.handleSendInvite(nil, "c1", payload)

	require.Empty(t, l.invites)
}

func TestHandleSendInviteCreatesInviteForOnlineRecipient(t *testing.T) {
	l := newTestLobby()
	connectTestUser(l, "c1", "u1", "Ada")
	connectTestUser(l, "c2", "u2", "Bob")

	payload, _ := json.Marshal(sendInvitePayload{ToUserID: "u2", RoomCode: "ABC123"})
	l.handleSendInvite(nil, "c1", payload)

	require.Len(t, l.invites, 1)
	for _, inv := range l.invites {
		require.Equal(t, "u1", inv.FromID)
		require.Equal(t, "u2", inv.ToID)
		require.Equal(t, "ABC123", inv.RoomCode)
	}
}

func TestHandleCancelInviteRejectsNonSender(t *testing.T) {
	l := newTestLobby()
	connectTestUser(l, "c1", "u1", "Ada")
	connectTestUser(l, "c2", "u2", "Bob")

	l.invites["inv-1"] = &invite{ID: "inv-1", FromID: "u1", ToID: "u2", RoomCode: "ABC123"}

	payload, _ := json.Marshal(cancelInvitePayload{InviteID: "inv-1"})
	l.handleCancelInvite(nil, "c2", payload)

	require.Contains(t, l.invites, "inv-1")
}

func TestHandleCancelInviteRemovesInviteForSender(t *testing.T) {
	l := newTestLobby()
	connectTestUser(l, "c1", "u1", "Ada")

	l.invites["inv-1"] = &invite{ID: "inv-1", FromID: "u1", ToID: "u2", RoomCode: "ABC123"}

	payload, _ := json.Marshal(cancelInvitePayload{InviteID: "inv-1"})
	l.handleCancelInvite(nil, "c1", payload)

	require.NotContains(t, l.invites, "inv-1")
}
