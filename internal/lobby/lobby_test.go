package lobby

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seednode-labs/dicee/internal/room"
)

type fakeBroker struct {
	rooms map[string]*room.Room
}

func (b fakeBroker) Get(code string) (*room.Room, bool) {
	r, ok := b.rooms[code]
	return r, ok
}

func newTestLobby() *Lobby {
	return New(fakeBroker{rooms: map[string]*room.Room{}})
}

func TestRoomDirectoryOnlyListsPublicRooms(t *testing.T) {
	l := newTestLobby()

	l.handleRoomStatus(room.StatusSnapshot{Code: "AAA111", Public: true, SeatedCount: 1, MaxSeats: 4, HostName: "host"})
	l.handleRoomStatus(room.StatusSnapshot{Code: "BBB222", Public: false})

	dir := l.roomDirectory()
	require.Len(t, dir, 1)
	require.Equal(t, "AAA111", dir[0].Code)
}

func TestHandleRoomStatusPrivateRoomNeverListed(t *testing.T) {
	l := newTestLobby()

	l.handleRoomStatus(room.StatusSnapshot{Code: "CCC333", Public: false})
	require.Empty(t, l.roomDirectory())
	require.NotContains(t, l.rooms, "CCC333")
}

func TestHandleRoomStatusGoingPrivateRemovesFromDirectory(t *testing.T) {
	l := newTestLobby()

	l.handleRoomStatus(room.StatusSnapshot{Code: "DDD444", Public: true})
	require.Len(t, l.roomDirectory(), 1)

	l.handleRoomStatus(room.StatusSnapshot{Code: "DDD444", Public: false})
	require.Empty(t, l.roomDirectory())
}

func TestHandleRoomClosedRemovesDirectoryEntry(t *testing.T) {
	l := newTestLobby()

	l.handleRoomStatus(room.StatusSnapshot{Code: "EEE555", Public: true})
	require.Len(t, l.roomDirectory(), 1)

	l.handleRoomClosed("EEE555")
	require.Empty(t, l.roomDirectory())

	// closing an already-absent code is a no-op, not a panic.
	l.handleRoomClosed("EEE555")
}

func TestOnlineUsersReflectsPresence(t *testing.T) {
	l := newTestLobby()
	require.Empty(t, l.onlineUsers())

	l.presence["u1"] = &presenceEntry{UserID: "u1", DisplayName: "Ada", AvatarSeed: "seed-1"}
	users := l.onlineUsers()
	require.Len(t, users, 1)
	require.Equal(t, "Ada", users[0].DisplayName)
}

func TestManagerBrokerDelegatesToManager(t *testing.T) {
	mgr := room.NewManager(nil, room.Config{}, nil)
	broker := NewManagerBroker(mgr)

	_, ok := broker.Get("ZZZ999")
	require.False(t, ok)
}
