package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryNamespaceGetPutDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ns := s.Namespace("ABC234")

	_, err := ns.Get(ctx, KeyGameState)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, ns.Put(ctx, KeyGameState, []byte("state-1")))
	v, err := ns.Get(ctx, KeyGameState)
	require.NoError(t, err)
	require.Equal(t, "state-1", string(v))

	require.NoError(t, ns.Delete(ctx, KeyGameState))
	_, err = ns.Get(ctx, KeyGameState)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAlarmSupersedes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ns := s.Namespace("ABC234")

	now := time.Now()
	require.NoError(t, ns.SetAlarm(ctx, now.Add(time.Minute), AlarmDescriptor{Kind: AlarmTurnTimeout}))
	require.NoError(t, ns.SetAlarm(ctx, now.Add(time.Hour), AlarmDescriptor{Kind: AlarmAFKTimeout}))

	at, desc, ok, err := ns.GetAlarm(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, AlarmAFKTimeout, desc.Kind)
	require.WithinDuration(t, now.Add(time.Hour), at, time.Second)
}

func TestMemoryDueAlarms(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ns := s.Namespace("ABC234")

	now := time.Now()
	require.NoError(t, ns.SetAlarm(ctx, now.Add(-time.Second), AlarmDescriptor{Kind: AlarmRoomCleanup}))

	due, err := s.DueAlarms(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "ABC234", due[0].RoomCode)
}

func TestMemoryAttachmentSizeLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAttachmentStore()

	oversized := make([]byte, MaxAttachmentBytes+1)
	err := s.Attach(ctx, "conn-1", oversized)
	require.ErrorIs(t, err, ErrAttachmentTooLarge)

	require.NoError(t, s.Attach(ctx, "conn-1", []byte("ok")))
	data, ok, err := s.ReadAttachment(ctx, "conn-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ok", string(data))
}
