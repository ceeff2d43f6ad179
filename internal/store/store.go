// Package store implements an abstract per-room key-value namespace
// plus a single-pending-alarm scheduling primitive, modeled on a
// hibernating-actor runtime's storage API. Nothing in the rest of the
// module talks to Redis directly: every component goes through the
// Namespace interface defined here, so the room core can be driven
// against an in-memory fake in tests, where resuming a room behaves
// the same as running it without interruption.
package store

import (
	"context"
	"errors"
	"time"
)

// Well-known keys within a room's namespace.
const (
	KeyRoom         = "room"
	KeyGameState    = "game_state"
	KeyChatMessages = "chat:messages"
	KeyChatLimits   = "chat:rateLimits"
	KeyJoinRequests = "join_requests"
	KeyAlarmData    = "alarm_data"
	KeyAITurnData   = "ai_turn_data"
)

// MaxAttachmentBytes is the hard cap on a connection attachment.
const MaxAttachmentBytes = 2048

var (
	ErrNotFound          = errors.New("store: key not found")
	ErrAttachmentTooLarge = errors.New("store: attachment exceeds 2KB limit")
)

// AlarmDescriptor records why an alarm was scheduled, so the handler
// can recover purpose on wake without re-deriving it from scratch.
type AlarmDescriptor struct {
	Kind        AlarmKind `json:"kind"`
	PlayerID    string    `json:"playerId,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// AlarmKind is the closed set of reasons a room alarm may fire.
type AlarmKind string

const (
	AlarmTurnTimeout       AlarmKind = "TURN_TIMEOUT"
	AlarmAFKWarning        AlarmKind = "AFK_WARNING"
	AlarmAFKTimeout        AlarmKind = "AFK_TIMEOUT"
	AlarmGameStart         AlarmKind = "GAME_START"
	AlarmAITurn            AlarmKind = "AI_TURN"
	AlarmReconnectDeadline AlarmKind = "RECONNECT_DEADLINE"
	AlarmRoomCleanup       AlarmKind = "ROOM_CLEANUP"
)

// Namespace is the private key-value store plus alarm clock owned by a
// single room (or, for the lobby, the one process-wide lobby
// namespace). Every write is individually atomic; callers never rely on
// multi-key transactions.
type Namespace interface {
	Get(ctx context.Context, key string) ([]byte, error) // ErrNotFound if absent
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// SetAlarm overwrites any previously pending alarm: a room holds at
	// most one pending alarm at a time.
	SetAlarm(ctx context.Context, at time.Time, descriptor AlarmDescriptor) error
	DeleteAlarm(ctx context.Context) error
	GetAlarm(ctx context.Context) (time.Time, AlarmDescriptor, bool, error)
}

// Store opens (creating on first use) the namespace for a room code.
type Store interface {
	Namespace(roomCode string) Namespace
	// DueAlarms returns every room namespace with a pending alarm at or
	// before now, for the alarm sweep loop to fire. Firing is the
	// caller's responsibility; DueAlarms only reports.
	DueAlarms(ctx context.Context, now time.Time) ([]DueAlarm, error)
}

// DueAlarm names a room whose alarm has fired.
type DueAlarm struct {
	RoomCode   string
	Descriptor AlarmDescriptor
}

// AttachmentStore models the connection-attachment facility: a small
// blob tied to a live connection that survives hibernation/resume and
// is the sole source of connection identity after resume.
type AttachmentStore interface {
	Attach(ctx context.Context, connID string, data []byte) error
	ReadAttachment(ctx context.Context, connID string) ([]byte, bool, error)
	ForgetAttachment(ctx context.Context, connID string) error
}
