package joinrequest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateDuplicateRejected(t *testing.T) {
	m := NewManager()
	now := time.Now()

	_, err := m.Create("ABC123", "u1", "Alice", "seed", now)
	require.NoError(t, err)

	_, err = m.Create("ABC123", "u1", "Alice", "seed", now)
	require.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestApproveThenTerminalRejectsFurtherTransitions(t *testing.T) {
	m := NewManager()
	now := time.Now()

	req, err := m.Create("ABC123", "u1", "Alice", "seed", now)
	require.NoError(t, err)

	_, err = m.Approve(req.ID, now)
	require.NoError(t, err)

	_, err = m.Decline(req.ID, now)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCancelRequiresRequester(t *testing.T) {
	m := NewManager()
	now := time.Now()

	req, err := m.Create("ABC123", "u1", "Alice", "seed", now)
	require.NoError(t, err)

	_, err = m.Cancel(req.ID, "u2", now)
	require.ErrorIs(t, err, ErrNotRequester)

	_, err = m.Cancel(req.ID, "u1", now)
	require.NoError(t, err)
}

func TestExpiryAfterTTL(t *testing.T) {
	m := NewManager()
	now := time.Now()

	req, err := m.Create("ABC123", "u1", "Alice", "seed", now)
	require.NoError(t, err)

	later := now.Add(TTL + time.Second)
	_, err = m.Approve(req.ID, later)
	require.ErrorIs(t, err, ErrRequestExpired)

	got, ok := m.Get(req.ID)
	require.True(t, ok)
	require.Equal(t, StatusExpired, got.Status)
}

func TestSweepExpiresStaleRequests(t *testing.T) {
	m := NewManager()
	now := time.Now()
	_, err := m.Create("ABC123", "u1", "Alice", "seed", now)
	require.NoError(t, err)

	expired := m.Sweep(now.Add(TTL + time.Second))
	require.Len(t, expired, 1)
	require.Equal(t, StatusExpired, expired[0].Status)
}

func TestMaxPendingRequestsPerRoom(t *testing.T) {
	m := NewManager()
	now := time.Now()
	for i := 0; i < MaxPendingRequestsPerRoom; i++ {
		_, err := m.Create("ABC123", fmt.Sprintf("requester-%d", i), "P", "seed", now)
		require.NoError(t, err)
	}
	_, err := m.Create("ABC123", "one-too-many", "P", "seed", now)
	require.ErrorIs(t, err, ErrMaxRequestsExceeded)
}
