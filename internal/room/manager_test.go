package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seednode-labs/dicee/internal/store"
)

type fakeListener struct {
	statuses []StatusSnapshot
	closed   []string
}

func (f *fakeListener) NotifyRoomStatus(s StatusSnapshot) { f.statuses = append(f.statuses, s) }
func (f *fakeListener) NotifyRoomClosed(code string)      { f.closed = append(f.closed, code) }

func testConfig() Config {
	return Config{
		TurnTimeout:      time.Minute,
		ReconnectWindow:  time.Minute,
		JoinRequestTTL:   time.Minute,
		GameStartDelay:   time.Second,
		RoomCleanupAfter: time.Minute,
		ChatHistoryCap:   50,
	}
}

func TestManagerCreateGeneratesUniqueCode(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(store.NewMemoryStore(), testConfig(), nil)

	r, err := mgr.Create(ctx)
	require.NoError(t, err)
	require.Len(t, r.Code, CodeLength)

	for _, c := range r.Code {
		require.Contains(t, CodeAlphabet, string(c))
	}

	got, ok := mgr.Get(r.Code)
	require.True(t, ok)
	require.Same(t, r, got)
}

func TestManagerResumeReusesOpenActor(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(store.NewMemoryStore(), testConfig(), nil)

	r1 := mgr.Resume(ctx, "ABCDEF")
	r2 := mgr.Resume(ctx, "ABCDEF")
	require.Same(t, r1, r2)
}

func TestManagerSetListenerReceivesStatusAndClose(t *testing.T) {
	ctx := context.Background()
	listener := &fakeListener{}
	mgr := NewManager(store.NewMemoryStore(), testConfig(), nil)
	mgr.SetListener(listener)

	r, err := mgr.Create(ctx)
	require.NoError(t, err)

	mgr.notifyStatus(r.Status())
	require.Len(t, listener.statuses, 1)
	require.Equal(t, r.Code, listener.statuses[0].Code)

	mgr.closeRoom(r.Code)
	require.Equal(t, []string{r.Code}, listener.closed)

	_, ok := mgr.Get(r.Code)
	require.False(t, ok)
}

func TestManagerSnapshotListsOpenRooms(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(store.NewMemoryStore(), testConfig(), nil)

	_, err := mgr.Create(ctx)
	require.NoError(t, err)
	_, err = mgr.Create(ctx)
	require.NoError(t, err)

	snap := mgr.Snapshot(ctx)
	require.Len(t, snap, 2)
}
