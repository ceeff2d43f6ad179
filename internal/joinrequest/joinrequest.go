// Package joinrequest implements the per-room lifecycle of pending
// join requests, including TTL expiry and terminal-state enforcement.
package joinrequest

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TTL                      = 2 * time.Minute
	MaxPendingRequestsPerRoom = 10
)

// Status is one of the closed set of join-request states; every
// non-pending status is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDeclined  Status = "declined"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func (s Status) terminal() bool {
	return s != StatusPending
}

var (
	ErrRequestExpired          = errors.New("joinrequest: request expired")
	ErrInvalidStatusTransition = errors.New("joinrequest: invalid status transition")
	ErrNotRequester            = errors.New("joinrequest: caller is not the requester")
	ErrRequestNotFound         = errors.New("joinrequest: request not found")
	ErrDuplicateRequest        = errors.New("joinrequest: duplicate pending request")
	ErrMaxRequestsExceeded     = errors.New("joinrequest: too many pending requests")
)

// Request is one join request against a room.
type Request struct {
	ID              string
	RoomCode        string
	RequesterID     string
	RequesterName   string
	RequesterAvatar string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	Status          Status
}

func (r Request) isExpired(now time.Time) bool {
	return r.Status == StatusPending && !now.Before(r.ExpiresAt)
}

// Manager tracks every pending/terminal join request for a single room.
// Each Room owns one; the lobby holds none of its own and brokers
// requests into the target room's Manager.
type Manager struct {
	mu       sync.Mutex
	requests map[string]*Request // id -> request
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{requests: make(map[string]*Request)}
}

// Create opens a new pending request for (roomCode, requesterID),
// enforcing one pending request per requester and the per-room cap.
func (m *Manager) Create(roomCode, requesterID, requesterName, requesterAvatar string, now time.Time) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireStaleLocked(now)

	pendingCount := 0
	for _, r := range m.requests {
		if r.Status != StatusPending {
			continue
		}
		pendingCount++
		if r.RequesterID == requesterID {
			return Request{}, ErrDuplicateRequest
		}
	}
	if pendingCount >= MaxPendingRequestsPerRoom {
		return Request{}, ErrMaxRequestsExceeded
	}

	req := &Request{
		ID:              uuid.NewString(),
		RoomCode:        roomCode,
		RequesterID:     requesterID,
		RequesterName:   requesterName,
		RequesterAvatar: requesterAvatar,
		CreatedAt:       now,
		ExpiresAt:       now.Add(TTL),
		Status:          StatusPending,
	}
	m.requests[req.ID] = req

	return *req, nil
}

func (m *Manager) transition(id string, now time.Time, check func(*Request) error, next Status) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return Request{}, ErrRequestNotFound
	}

	if req.isExpired(now) {
		req.Status = StatusExpired
		if next != StatusExpired {
			return Request{}, ErrRequestExpired
		}
		return *req, nil
	}

	if req.Status.terminal() {
		return Request{}, ErrInvalidStatusTransition
	}

	if check != nil {
		if err := check(req); err != nil {
			return Request{}, err
		}
	}

	req.Status = next
	return *req, nil
}

// Approve transitions id to approved.
func (m *Manager) Approve(id string, now time.Time) (Request, error) {
	return m.transition(id, now, nil, StatusApproved)
}

// Decline transitions id to declined.
func (m *Manager) Decline(id string, now time.Time) (Request, error) {
	return m.transition(id, now, nil, StatusDeclined)
}

// Cancel transitions id to cancelled; only the original requester may do so.
func (m *Manager) Cancel(id, callerID string, now time.Time) (Request, error) {
	return m.transition(id, now, func(r *Request) error {
		if r.RequesterID != callerID {
			return ErrNotRequester
		}
		return nil
	}, StatusCancelled)
}

// Get returns a copy of the request by id.
func (m *Manager) Get(id string) (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return Request{}, false
	}
	return *req, true
}

func (m *Manager) expireStaleLocked(now time.Time) []Request {
	var expired []Request
	for _, r := range m.requests {
		if r.isExpired(now) {
			r.Status = StatusExpired
			expired = append(expired, *r)
		}
	}
	return expired
}

// Sweep transitions every stale pending request to expired and returns
// the ones it changed, for the caller to turn into events. This is the
// periodic sweep driven by the room's alarm loop or a wall-clock
// ticker.
func (m *Manager) Sweep(now time.Time) []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expireStaleLocked(now)
}

// All returns a snapshot of every request, for persistence.
func (m *Manager) All() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, *r)
	}
	return out
}

// Restore replaces the in-memory request set, used when reloading from
// the store.
func (m *Manager) Restore(requests []Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[string]*Request, len(requests))
	for i := range requests {
		r := requests[i]
		m.requests[r.ID] = &r
	}
}
