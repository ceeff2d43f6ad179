package room

import (
	"context"
	"encoding/json"
	"time"

	"github.com/seednode-labs/dicee/internal/ai"
	"github.com/seednode-labs/dicee/internal/chat"
	"github.com/seednode-labs/dicee/internal/gamestate"
	"github.com/seednode-labs/dicee/internal/joinrequest"
	"github.com/seednode-labs/dicee/internal/store"
)

// roomMeta is the persisted shape of the "room" key: the room
// metadata that isn't part of the in-progress game itself.
type roomMeta struct {
	Code      string    `json:"code"`
	HostID    string    `json:"hostId"`
	Settings  Settings  `json:"settings"`
	Phase     Phase     `json:"phase"`
	CreatedAt time.Time `json:"createdAt"`
	StartedAt time.Time `json:"startedAt"`
	Seats     []Seat    `json:"seats"`
}

// persistRoom writes room metadata and seat table. Every write is
// individually atomic; callers do not assume anything stronger, and
// game_state/chat/etc. are written with their own separate calls.
func (r *Room) persistRoom(ctx context.Context) {
	seats := make([]Seat, 0, len(r.Seats))
	for _, id := range r.seatedPlayerIDsUnsorted() {
		seats = append(seats, *r.Seats[id])
	}

	meta := roomMeta{
		Code: r.Code, HostID: r.HostID, Settings: r.Settings, Phase: r.Phase,
		CreatedAt: r.CreatedAt, StartedAt: r.StartedAt, Seats: seats,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return
	}
	_ = r.ns.Put(ctx, store.KeyRoom, data)
}

func (r *Room) seatedPlayerIDsUnsorted() []string {
	ids := make([]string, 0, len(r.Seats))
	for id := range r.Seats {
		ids = append(ids, id)
	}
	return ids
}

func (r *Room) persistGameState(ctx context.Context) {
	data, err := json.Marshal(r.Game)
	if err != nil {
		return
	}
	_ = r.ns.Put(ctx, store.KeyGameState, data)
}

func (r *Room) persistChat(ctx context.Context, messages []chat.Message) {
	data, err := json.Marshal(messages)
	if err != nil {
		return
	}
	_ = r.ns.Put(ctx, store.KeyChatMessages, data)
}

// persistChatLimits writes through the per-user rate-limit state after
// every chat mutation, so a resumed room keeps enforcing message/typing
// rate limits instead of resetting everyone's cooldown.
func (r *Room) persistChatLimits(ctx context.Context) {
	data, err := json.Marshal(r.Chat.RateLimits())
	if err != nil {
		return
	}
	_ = r.ns.Put(ctx, store.KeyChatLimits, data)
}

func (r *Room) persistJoinRequests(ctx context.Context) {
	data, err := json.Marshal(r.JoinRequests.All())
	if err != nil {
		return
	}
	_ = r.ns.Put(ctx, store.KeyJoinRequests, data)
}

func (r *Room) persistAITurn(ctx context.Context) {
	if r.aiTurn == nil {
		_ = r.ns.Delete(ctx, store.KeyAITurnData)
		return
	}
	data, err := json.Marshal(r.aiTurn)
	if err != nil {
		return
	}
	_ = r.ns.Put(ctx, store.KeyAITurnData, data)
}

// reload re-reads every key this room's writer needs before acting on
// an incoming event: in-memory state must not be trusted without a
// fresh get of the key most relevant to the event. It is idempotent
// and safe to call on every inbox iteration.
func (r *Room) reload(ctx context.Context) {
	if data, err := r.ns.Get(ctx, store.KeyRoom); err == nil {
		var meta roomMeta
		if json.Unmarshal(data, &meta) == nil {
			r.HostID = meta.HostID
			r.Settings = meta.Settings
			r.Phase = meta.Phase
			r.CreatedAt = meta.CreatedAt
			r.StartedAt = meta.StartedAt
			r.Seats = make(map[string]*Seat, len(meta.Seats))
			for i := range meta.Seats {
				s := meta.Seats[i]
				r.Seats[s.PlayerID] = &s
			}
		}
	}

	if data, err := r.ns.Get(ctx, store.KeyGameState); err == nil {
		var gs gamestate.State
		if json.Unmarshal(data, &gs) == nil {
			r.Game = &gs
		}
	}

	if data, err := r.ns.Get(ctx, store.KeyChatMessages); err == nil {
		var msgs []chat.Message
		if json.Unmarshal(data, &msgs) == nil {
			r.Chat.Restore(msgs)
		}
	}

	if data, err := r.ns.Get(ctx, store.KeyChatLimits); err == nil {
		var limits []chat.RateLimitSnapshot
		if json.Unmarshal(data, &limits) == nil {
			r.Chat.RestoreRateLimits(limits)
		}
	}

	if data, err := r.ns.Get(ctx, store.KeyJoinRequests); err == nil {
		var reqs []joinrequest.Request
		if json.Unmarshal(data, &reqs) == nil {
			r.JoinRequests.Restore(reqs)
		}
	}

	r.aiTurn = nil
	if data, err := r.ns.Get(ctx, store.KeyAITurnData); err == nil {
		var st ai.TurnState
		if json.Unmarshal(data, &st) == nil {
			r.aiTurn = &st
		}
	}
}
