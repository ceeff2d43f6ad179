package room

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/seednode-labs/dicee/internal/store"
)

// CodeAlphabet is the unambiguous six-character room-code alphabet:
// A-Z minus I, L, O, plus 2-9 minus 0, 1.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed length of a room code.
const CodeLength = 6

// StatusListener is notified whenever a room's status changes, so the
// lobby directory cache can stay current without polling every room:
// a push on every mutation rather than a separate timer.
type StatusListener interface {
	NotifyRoomStatus(StatusSnapshot)
	NotifyRoomClosed(code string)
}

// Manager opens, looks up and reaps Room actors: a mutex-guarded map
// plus a collision-checked code generator, backed by the richer
// per-room cleanup alarm each Room
// schedules for itself (ROOM_CLEANUP, not a manager-side ticker).
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room

	store    store.Store
	cfg      Config
	listener StatusListener
}

// NewManager returns an empty Manager backed by store for persistence.
func NewManager(s store.Store, cfg Config, listener StatusListener) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		store:    s,
		cfg:      cfg,
		listener: listener,
	}
}

// SetListener attaches the status listener after construction, for the
// common case where the listener (the lobby) itself needs a reference
// back to the Manager to build.
func (m *Manager) SetListener(listener StatusListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = listener
}

// Create allocates a fresh room with a newly generated, collision-free
// code and starts its actor goroutine.
func (m *Manager) Create(ctx context.Context) (*Room, error) {
	m.mu.Lock()
	code, err := m.newCodeLocked()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	r := newRoom(code, m.store.Namespace(code), m, m.cfg)
	m.rooms[code] = r
	m.mu.Unlock()

	r.Start(ctx)
	return r, nil
}

// Get returns the room for code if it is currently open in this
// process. ok is false if it must be looked up via a cold start
// (Resume) instead, e.g. after a process restart, when the room's
// state exists only in the store.
func (m *Manager) Get(code string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[code]
	return r, ok
}

// Resume opens an actor for a room code whose state already exists in
// the store (or is being addressed for the first time under a
// client-chosen code), without generating a new code. The room's first
// inbox iteration reloads everything from the store under the
// resumption contract, so Resume itself does not need to know whether
// the code is new or returning.
func (m *Manager) Resume(ctx context.Context, code string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.rooms[code]; ok {
		return r
	}

	r := newRoom(code, m.store.Namespace(code), m, m.cfg)
	m.rooms[code] = r
	r.Start(ctx)
	return r
}

// newCodeLocked generates a CodeAlphabet code not already open in this
// process. Callers must hold m.mu.
func (m *Manager) newCodeLocked() (string, error) {
	for {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if _, exists := m.rooms[code]; !exists {
			return code, nil
		}
	}
}

func randomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, CodeLength)
	for i, b := range buf {
		out[i] = CodeAlphabet[int(b)%len(CodeAlphabet)]
	}
	return string(out), nil
}

// closeRoom removes code from the open-room table once its actor has
// gone abandoned (handleRoomCleanupAlarm). The actor goroutine itself
// exits when its context is cancelled by the caller; Manager only stops
// tracking it so a later Connect for the same code opens a fresh actor
// that reloads from the store.
func (m *Manager) closeRoom(code string) {
	m.mu.Lock()
	delete(m.rooms, code)
	m.mu.Unlock()

	if m.listener != nil {
		m.listener.NotifyRoomClosed(code)
	}
}

func (m *Manager) notifyStatus(s StatusSnapshot) {
	if m.listener != nil {
		m.listener.NotifyRoomStatus(s)
	}
}

// Snapshot returns a StatusSnapshot for every room currently open in
// this process, for rebuilding a lobby directory cache on demand after
// a lobby restart.
func (m *Manager) Snapshot(ctx context.Context) []StatusSnapshot {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	out := make([]StatusSnapshot, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Status())
	}
	return out
}

// RoomCleanupAfter is how long an empty room (no connections, no
// pending alarms besides its own cleanup check) is kept before the
// ROOM_CLEANUP alarm tears it down.
func (cfg Config) roomCleanupDelay() time.Duration {
	if cfg.RoomCleanupAfter <= 0 {
		return 30 * time.Minute
	}
	return cfg.RoomCleanupAfter
}
