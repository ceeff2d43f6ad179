package lobby

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seednode-labs/dicee/internal/room"
	"github.com/seednode-labs/dicee/internal/store"
)

func newLiveRoom(t *testing.T) (*room.Room, context.Context) {
	t.Helper()
	ctx := context.Background()
	mgr := room.NewManager(store.NewMemoryStore(), room.Config{
		TurnTimeout: time.Minute, ReconnectWindow: time.Minute, JoinRequestTTL: time.Minute,
		GameStartDelay: time.Second, RoomCleanupAfter: time.Minute, ChatHistoryCap: 50,
	}, nil)
	r, err := mgr.Create(ctx)
	require.NoError(t, err)
	return r, ctx
}

func TestHandleRequestJoinSucceedsAgainstLiveRoom(t *testing.T) {
	r, ctx := newLiveRoom(t)
	l := newTestLobby()
	l.broker = fakeBroker{rooms: map[string]*room.Room{r.Code: r}}
	connectTestUser(l, "c1", "requester-1", "Ada")

	payload, _ := json.Marshal(requestJoinPayload{RoomCode: r.Code})
	l.handleRequestJoin(ctx, "c1", payload)

	all := r.JoinRequests.All()
	require.Len(t, all, 1)
	require.Equal(t, "requester-1", all[0].RequesterID)
}

func TestHandleRequestJoinErrorsForUnknownRoom(t *testing.T) {
	l := newTestLobby()
	connectTestUser(l, "c1", "requester-1", "Ada")

	payload, _ := json.Marshal(requestJoinPayload{RoomCode: "NOPE99"})
	require.NotPanics(t, func() {
		l.handleRequestJoin(context.Background(), "c1", payload)
	})
}

func TestHandleCancelJoinRequestAgainstLiveRoom(t *testing.T) {
	r, ctx := newLiveRoom(t)
	l := newTestLobby()
	l.broker = fakeBroker{rooms: map[string]*room.Room{r.Code: r}}
	connectTestUser(l, "c1", "requester-1", "Ada")

	req, err := r.RequestJoin("requester-1", "Ada", "seed")
	require.NoError(t, err)

	payload, _ := json.Marshal(cancelJoinRequestPayload{RoomCode: r.Code, RequestID: req.ID})
	l.handleCancelJoinRequest(ctx, "c1", payload)

	got, ok := r.JoinRequests.Get(req.ID)
	require.True(t, ok)
	require.Equal(t, "cancelled", string(got.Status))
}
