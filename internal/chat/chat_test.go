package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleTextRateLimited(t *testing.T) {
	e := New()

	_, err := e.HandleText("u1", "Alice", "hello")
	require.NoError(t, err)

	_, err = e.HandleText("u1", "Alice", "hello again")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestHandleTextTooLong(t *testing.T) {
	e := New()
	long := make([]byte, MaxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := e.HandleText("u1", "Alice", string(long))
	require.ErrorIs(t, err, ErrMessageTooLong)
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	e := NewWithCap(3)
	for i := 0; i < 5; i++ {
		e.CreateSystem("line")
	}
	history := e.History()
	require.Len(t, history, 3)
}

func TestHandleQuickUnknownKey(t *testing.T) {
	e := New()
	_, err := e.HandleQuick("u1", "Alice", "not_a_real_key")
	require.ErrorIs(t, err, ErrInvalidMessage)
}

func TestHandleReaction(t *testing.T) {
	e := New()
	ev, err := e.HandleText("u1", "Alice", "hi")
	require.NoError(t, err)

	update, err := e.HandleReaction("u2", ev.Message.ID, "thumbs_up", true)
	require.NoError(t, err)
	require.Contains(t, update.UserIDs, "u2")

	_, err = e.HandleReaction("u2", "missing", "thumbs_up", true)
	require.ErrorIs(t, err, ErrMessageNotFound)

	_, err = e.HandleReaction("u2", ev.Message.ID, ReactionToken("not_real"), true)
	require.ErrorIs(t, err, ErrInvalidMessage)
}

func TestTypingIntervalSuppression(t *testing.T) {
	e := New()
	require.True(t, e.TypingStart("u1"))
	require.False(t, e.TypingStart("u1"))
}
