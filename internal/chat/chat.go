// Package chat implements per-room message history, reactions, typing
// indicators and rate limits. It is embedded both by room (per game
// room) and by lobby, which share identical semantics.
package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultHistoryCap     = 100
	MaxMessageLength      = 280
	MessageInterval       = 500 * time.Millisecond
	TypingInterval        = 2 * time.Second
	TypingTimeout         = 5 * time.Second
	ReactionsPerWindow    = 20
	ReactionWindow        = 10 * time.Second
)

var (
	ErrRateLimited     = errors.New("chat: rate limited")
	ErrMessageTooLong  = errors.New("chat: message too long")
	ErrInvalidMessage  = errors.New("chat: invalid message")
	ErrMessageNotFound = errors.New("chat: message not found")
)

// Kind distinguishes free-text, canned "quick chat", and system lines.
type Kind string

const (
	KindText   Kind = "text"
	KindQuick  Kind = "quick"
	KindSystem Kind = "system"
)

// ReactionToken is one of the closed set of reaction emoji/keys callers
// may attach to a message.
type ReactionToken string

var validReactions = map[ReactionToken]bool{
	"thumbs_up": true, "thumbs_down": true, "laugh": true,
	"wow": true, "sad": true, "heart": true, "dice": true,
}

// IsValidReaction reports whether token is in the closed reaction set.
func IsValidReaction(token ReactionToken) bool {
	return validReactions[token]
}

// quickChatPresets maps a stable key to server-formatted text, so
// clients cannot inject arbitrary strings through the "quick chat" path.
var quickChatPresets = map[string]string{
	"nice_roll":    "Nice roll!",
	"good_game":    "Good game!",
	"unlucky":      "Unlucky!",
	"hurry_up":     "Hurry up!",
	"nice_move":    "Nice move!",
	"oof":          "Oof.",
}

// QuickChatText resolves a preset key to its formatted text, or false
// if the key is not one of the closed presets.
func QuickChatText(key string) (string, bool) {
	text, ok := quickChatPresets[key]
	return text, ok
}

// Message is one chat line, persisted through to the store after every
// mutating operation.
type Message struct {
	ID          string               `json:"id"`
	AuthorID    string               `json:"authorId"`
	DisplayName string               `json:"displayName"`
	Kind        Kind                 `json:"kind"`
	Content     string               `json:"content"`
	Timestamp   time.Time            `json:"timestamp"`
	Reactions   map[ReactionToken]map[string]bool `json:"reactions"`
}

type rateLimitState struct {
	lastMessageAt      time.Time
	lastTypingAt       time.Time
	reactionCount      int
	reactionWindowFrom time.Time
}

// RateLimitSnapshot is the persistable shape of one user's rate-limit
// state: lastMessageAt and the reaction window survive a restart,
// lastTypingAt does not since typing indicators are explicitly
// ephemeral.
type RateLimitSnapshot struct {
	UserID             string    `json:"userId"`
	LastMessageAt      time.Time `json:"lastMessageAt"`
	ReactionCount      int       `json:"reactionCount"`
	ReactionWindowFrom time.Time `json:"reactionWindowFrom"`
}

// RateLimits returns every user's current rate-limit state, for the
// caller to write through to the store after each chat mutation.
func (e *Engine) RateLimits() []RateLimitSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]RateLimitSnapshot, 0, len(e.limits))
	for userID, st := range e.limits {
		out = append(out, RateLimitSnapshot{
			UserID:             userID,
			LastMessageAt:      st.lastMessageAt,
			ReactionCount:      st.reactionCount,
			ReactionWindowFrom: st.reactionWindowFrom,
		})
	}
	return out
}

// RestoreRateLimits replaces in-memory rate-limit state from a
// persisted snapshot, used when reloading on resume. Typing state is
// not restored; it is ephemeral and expires on its own.
func (e *Engine) RestoreRateLimits(snapshots []RateLimitSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.limits = make(map[string]*rateLimitState, len(snapshots))
	for _, s := range snapshots {
		e.limits[s.UserID] = &rateLimitState{
			lastMessageAt:      s.LastMessageAt,
			reactionCount:      s.ReactionCount,
			reactionWindowFrom: s.ReactionWindowFrom,
		}
	}
}

// Engine holds one room's (or the lobby's) chat state: message history
// capped at historyCap and per-user rate-limit state.
type Engine struct {
	mu         sync.Mutex
	historyCap int
	messages   []Message
	limits     map[string]*rateLimitState
	typing     map[string]time.Time
}

// New returns an Engine with the default history cap.
func New() *Engine {
	return NewWithCap(DefaultHistoryCap)
}

// NewWithCap returns an Engine with a custom history cap, for tests and
// for the lobby, which may configure a different retention policy.
func NewWithCap(cap int) *Engine {
	return &Engine{
		historyCap: cap,
		limits:     make(map[string]*rateLimitState),
		typing:     make(map[string]time.Time),
	}
}

// Event is what a successful chat operation hands back for the caller
// to broadcast; History is the message list snapshot that must be
// written through to the store before broadcasting (persist before
// broadcast).
type Event struct {
	Message Message
	History []Message
}

func (e *Engine) limiterFor(userID string) *rateLimitState {
	st, ok := e.limits[userID]
	if !ok {
		st = &rateLimitState{}
		e.limits[userID] = st
	}
	return st
}

// allowMessage reports whether a message from st may be accepted now,
// enforcing the no-two-messages-within-MessageInterval rule, and
// records the acceptance time so the check survives a resume.
func (st *rateLimitState) allowMessage(now time.Time) bool {
	if !st.lastMessageAt.IsZero() && now.Sub(st.lastMessageAt) < MessageInterval {
		return false
	}
	st.lastMessageAt = now
	return true
}

// HandleText appends a free-text message from userID, enforcing the
// length cap and per-user message interval.
func (e *Engine) HandleText(userID, displayName, content string) (Event, error) {
	if content == "" || len([]rune(content)) > MaxMessageLength {
		if content == "" {
			return Event{}, ErrInvalidMessage
		}
		return Event{}, ErrMessageTooLong
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.limiterFor(userID)
	if !st.allowMessage(time.Now()) {
		return Event{}, ErrRateLimited
	}

	msg := e.appendLocked(userID, displayName, KindText, content)
	return Event{Message: msg, History: e.snapshotLocked()}, nil
}

// HandleQuick appends a preset "quick chat" message.
func (e *Engine) HandleQuick(userID, displayName, key string) (Event, error) {
	text, ok := QuickChatText(key)
	if !ok {
		return Event{}, ErrInvalidMessage
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.limiterFor(userID)
	if !st.allowMessage(time.Now()) {
		return Event{}, ErrRateLimited
	}

	msg := e.appendLocked(userID, displayName, KindQuick, text)
	return Event{Message: msg, History: e.snapshotLocked()}, nil
}

// CreateSystem appends a server-authored system line ("system" as the
// author id), bypassing rate limits.
func (e *Engine) CreateSystem(content string) Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	msg := e.appendLocked("system", "System", KindSystem, content)
	return Event{Message: msg, History: e.snapshotLocked()}
}

func (e *Engine) appendLocked(userID, displayName string, kind Kind, content string) Message {
	msg := Message{
		ID:          uuid.NewString(),
		AuthorID:    userID,
		DisplayName: displayName,
		Kind:        kind,
		Content:     content,
		Timestamp:   time.Now(),
		Reactions:   make(map[ReactionToken]map[string]bool),
	}

	e.messages = append(e.messages, msg)
	if len(e.messages) > e.historyCap {
		e.messages = e.messages[len(e.messages)-e.historyCap:]
	}

	return msg
}

func (e *Engine) snapshotLocked() []Message {
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// History returns a snapshot of the current message list.
func (e *Engine) History() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Restore replaces the in-memory history, used when reloading state
// from the store on resume.
func (e *Engine) Restore(messages []Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append([]Message(nil), messages...)
}

// ReactionUpdate is what HandleReaction hands back to broadcast.
type ReactionUpdate struct {
	MessageID string
	Token     ReactionToken
	UserIDs   []string
}

// HandleReaction adds or removes userID's reaction of token on
// messageID, enforcing the reaction rate window.
func (e *Engine) HandleReaction(userID, messageID string, token ReactionToken, add bool) (ReactionUpdate, error) {
	if !IsValidReaction(token) {
		return ReactionUpdate{}, ErrInvalidMessage
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.limiterFor(userID)
	now := time.Now()
	if st.reactionWindowFrom.IsZero() || now.Sub(st.reactionWindowFrom) > ReactionWindow {
		st.reactionWindowFrom = now
		st.reactionCount = 0
	}
	if add {
		if st.reactionCount >= ReactionsPerWindow {
			return ReactionUpdate{}, ErrRateLimited
		}
		st.reactionCount++
	}

	idx := -1
	for i := range e.messages {
		if e.messages[i].ID == messageID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ReactionUpdate{}, ErrMessageNotFound
	}

	msg := &e.messages[idx]
	if msg.Reactions[token] == nil {
		msg.Reactions[token] = make(map[string]bool)
	}
	if add {
		msg.Reactions[token][userID] = true
	} else {
		delete(msg.Reactions[token], userID)
	}

	userIDs := make([]string, 0, len(msg.Reactions[token]))
	for id := range msg.Reactions[token] {
		userIDs = append(userIDs, id)
	}

	return ReactionUpdate{MessageID: messageID, Token: token, UserIDs: userIDs}, nil
}

// TypingStart records a typing indicator for userID if it isn't being
// updated faster than TypingInterval. Returns false when the update
// should be suppressed (too frequent).
func (e *Engine) TypingStart(userID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.limiterFor(userID)
	now := time.Now()
	if !st.lastTypingAt.IsZero() && now.Sub(st.lastTypingAt) < TypingInterval {
		return false
	}
	st.lastTypingAt = now
	e.typing[userID] = now.Add(TypingTimeout)
	return true
}

// TypingStop clears userID's typing indicator.
func (e *Engine) TypingStop(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.typing, userID)
}

// ActiveTypers returns the user ids whose typing indicator has not
// expired, pruning expired entries as a side effect.
func (e *Engine) ActiveTypers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	var active []string
	for id, expiry := range e.typing {
		if now.After(expiry) {
			delete(e.typing, id)
			continue
		}
		active = append(active, id)
	}
	return active
}
