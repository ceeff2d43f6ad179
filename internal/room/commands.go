package room

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/seednode-labs/dicee/internal/ai"
	"github.com/seednode-labs/dicee/internal/gamestate"
	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/scoring"
	"github.com/seednode-labs/dicee/internal/store"
	"github.com/seednode-labs/dicee/internal/transport"
	"github.com/seednode-labs/dicee/internal/validator"
)

// handleFrame dispatches one inbound client frame to the chat-family or
// game-family handler named by its type.
func (r *Room) handleFrame(ctx context.Context, m frameMsg) {
	conn, ok := r.conns[m.connID]
	if !ok {
		return
	}

	switch m.frame.Type {
	case protocol.CmdStartGame:
		r.handleStartGame(ctx, conn)
	case protocol.CmdQuickPlayStart:
		r.handleQuickPlayStart(ctx, conn, m.frame.Payload)
	case protocol.CmdDiceRoll:
		r.handleDiceRoll(ctx, conn, m.frame.Payload)
	case protocol.CmdDiceKeep:
		r.handleDiceKeep(ctx, conn, m.frame.Payload)
	case protocol.CmdCategoryScore:
		r.handleCategoryScore(ctx, conn, m.frame.Payload)
	case protocol.CmdRematch:
		r.handleRematch(ctx, conn)
	case protocol.CmdAddAIPlayer:
		r.handleAddAIPlayer(ctx, conn, m.frame.Payload)
	case protocol.CmdPing:
		conn.Send(protocol.NewEvent(protocol.EvtPong, nil))
	case protocol.CmdChat, protocol.CmdQuickChat, protocol.CmdReaction, protocol.CmdTypingStart, protocol.CmdTypingStop:
		r.handleChatCommand(ctx, conn, m.frame)
	default:
		r.sendError(conn, protocol.ErrUnknownCommand, "unrecognized command type")
	}
}

func (r *Room) sendError(conn *transport.Conn, code protocol.ErrorCode, message string) {
	conn.Send(protocol.NewEvent(protocol.EvtError, protocol.ErrorPayload{Code: code, Message: message}))
}

func (r *Room) callerFor(userID string) validator.Caller {
	seat := r.Seats[userID]
	return validator.Caller{PlayerID: userID, IsHost: seat != nil && seat.IsHost}
}

func rejectionCode(err error) protocol.ErrorCode {
	switch err {
	case validator.ErrNotYourTurn:
		return protocol.ErrNotYourTurn
	case validator.ErrInvalidPhase:
		return protocol.ErrInvalidPhase
	case validator.ErrNoRollsRemaining:
		return protocol.ErrNoRollsRemaining
	case validator.ErrCategoryAlreadyScored:
		return protocol.ErrCategoryAlreadyScored
	case validator.ErrUnknownCategory:
		return protocol.ErrUnknownCategory
	case validator.ErrNotHost:
		return protocol.ErrNotHost
	case validator.ErrNotEnoughPlayers:
		return protocol.ErrNotEnoughPlayers
	case validator.ErrGameInProgress:
		return protocol.ErrGameInProgress
	case validator.ErrGameNotStarted:
		return protocol.ErrGameNotStarted
	default:
		return protocol.ErrInvalidMessage
	}
}

// handleStartGame implements START_GAME: validate, randomize player
// order, and schedule the brief GAME_START countdown before the first
// turn begins.
func (r *Room) handleStartGame(ctx context.Context, conn *transport.Conn) {
	userID := conn.Attachment.UserID
	if err := validator.ValidateStartGame(r.Game, r.callerFor(userID), r.seatedCount()); err != nil {
		r.sendError(conn, rejectionCode(err), err.Error())
		return
	}

	r.beginGame(ctx)
}

type quickPlayPayload struct {
	AIProfiles []string `json:"aiProfiles"`
}

// handleQuickPlayStart implements QUICK_PLAY_START: same as START_GAME
// but only legal when the host is the sole human. The caller names which
// AI profile fills each remaining seat via aiProfiles[]; unknown profile
// ids are skipped, and if fewer names are given than free seats (or the
// payload is empty/malformed) the rest are filled with the default
// profile, so the command never leaves seats empty the way START_GAME
// would reject.
func (r *Room) handleQuickPlayStart(ctx context.Context, conn *transport.Conn, payload json.RawMessage) {
	userID := conn.Attachment.UserID
	if err := validator.ValidateQuickPlayStart(r.Game, r.callerFor(userID), r.otherHumanCount(userID)); err != nil {
		r.sendError(conn, rejectionCode(err), err.Error())
		return
	}

	var p quickPlayPayload
	_ = json.Unmarshal(payload, &p)

	next := 0
	for r.freeSeatAvailable() && r.seatedCount() < 4 {
		profileID := defaultAIProfileID
		for next < len(p.AIProfiles) {
			candidate := p.AIProfiles[next]
			next++
			if _, err := ai.LookupProfile(candidate); err == nil {
				profileID = candidate
				break
			}
		}
		r.seatAIPlayer(ctx, profileID)
	}

	r.beginQuickPlay(ctx, userID)
}

const defaultAIProfileID = "prudence"

func (r *Room) seatAIPlayer(ctx context.Context, profileID string) {
	profile, err := ai.LookupProfile(profileID)
	if err != nil {
		return
	}
	id := "ai:" + profileID + ":" + randomSuffix(r.rnd)
	seat := &Seat{
		PlayerID: id, DisplayName: profile.DisplayName, AvatarSeed: profile.AvatarSeed,
		Type: gamestate.PlayerAI, AIProfileID: profileID, IsConnected: true, TurnOrder: len(r.Seats),
	}
	r.Seats[id] = seat
	r.broadcast(protocol.NewEvent(protocol.EvtAIPlayerJoined, r.seatViews()))
	r.systemChat(ctx, profile.DisplayName+" (AI) joined the room.")
}

func randomSuffix(rnd *rand.Rand) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	out := make([]byte, 6)
	for i := range out {
		out[i] = alphabet[rnd.Intn(len(alphabet))]
	}
	return string(out)
}

// newPlayers builds a fresh gamestate.Player entry for every seat in
// order, each with a blank scorecard.
func (r *Room) newPlayers(order []string) map[string]*gamestate.Player {
	players := make(map[string]*gamestate.Player, len(order))
	for _, id := range order {
		seat := r.Seats[id]
		players[id] = &gamestate.Player{
			ID: id, Type: seat.Type, AIProfileID: seat.AIProfileID, Scorecard: scoring.NewScorecard(),
		}
	}
	return players
}

// beginGame seeds gamestate.Player entries for every seat, randomizes
// turn order, and schedules the GAME_START countdown alarm.
func (r *Room) beginGame(ctx context.Context) {
	order := r.seatedPlayerIDs()
	r.rnd.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	r.Phase = PhaseStarting
	r.StartedAt = time.Now()
	r.Game = &gamestate.State{
		Phase: gamestate.PhaseStarting, PlayerOrder: order, Players: r.newPlayers(order),
		RoundNumber: 1, GameStartedAt: r.StartedAt,
	}
	r.persistRoom(ctx)
	r.persistGameState(ctx)

	r.broadcast(protocol.NewEvent(protocol.EvtGameStarted, RoomView{Code: r.Code, Phase: r.Phase, GamePhase: r.Game.Phase, Settings: r.Settings}))

	at := time.Now().Add(r.cfg.GameStartDelay)
	_ = r.ns.SetAlarm(ctx, at, store.AlarmDescriptor{Kind: store.AlarmGameStart, ScheduledAt: time.Now()})
}

// beginQuickPlay seats the calling host at playerOrder[0] and jumps
// straight into turn_roll with no shuffle and no countdown, so the
// host can roll the instant QUICK_PLAY_START is accepted: the seats
// were filled host-first (the host's TurnOrder is 0, AI seats are
// appended after), so seatedPlayerIDs() already returns the host
// first and every AI seat behind it.
func (r *Room) beginQuickPlay(ctx context.Context, hostID string) {
	order := r.seatedPlayerIDs()

	r.Phase = PhasePlaying
	r.StartedAt = time.Now()
	r.Game = &gamestate.State{
		Phase: gamestate.PhaseTurnRoll, PlayerOrder: order, Players: r.newPlayers(order),
		RoundNumber: 1, GameStartedAt: r.StartedAt,
	}
	r.persistRoom(ctx)
	r.persistGameState(ctx)

	r.broadcast(protocol.NewEvent(protocol.EvtQuickPlayStarted, RoomView{Code: r.Code, Phase: r.Phase, GamePhase: r.Game.Phase, Settings: r.Settings}))

	r.startTurn(ctx)
}

// handleGameStartAlarm fires once the countdown elapses: the game
// enters turn_roll and the first player's turn begins.
func (r *Room) handleGameStartAlarm(ctx context.Context) {
	if r.Game.Phase != gamestate.PhaseStarting {
		return
	}
	r.Phase = PhasePlaying
	r.Game.Phase = gamestate.PhaseTurnRoll
	r.broadcast(protocol.NewEvent(protocol.EvtGameStarting, nil))
	r.startTurn(ctx)
}

// startTurn resets the current player's roll state, persists, and
// schedules either the AI turn alarm or the human AFK alarms.
func (r *Room) startTurn(ctx context.Context) {
	player := r.Game.CurrentPlayer()
	if player == nil {
		return
	}
	player.RollsRemaining = gamestate.MaxRolls
	player.HasDice = false
	player.CurrentDice = [5]int{}
	player.KeptMask = [5]bool{}
	r.Game.Phase = gamestate.PhaseTurnRoll
	r.Game.TurnStartedAt = time.Now()

	seat := r.Seats[player.ID]

	r.persistGameState(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtTurnStarted, turnPayload(r.Game, player)))

	if seat != nil && seat.Type == gamestate.PlayerAI {
		r.scheduleAITurn(ctx, player.ID, aiTurnInitialDelay)
		return
	}

	r.Game.TurnDeadline = r.Game.TurnStartedAt.Add(r.Settings.TurnTimeout)
	r.persistGameState(ctx)
	r.scheduleTurnTimeoutAlarms(ctx, player.ID)
}

const aiTurnInitialDelay = 600 * time.Millisecond

type turnView struct {
	PlayerID       string `json:"playerId"`
	RoundNumber    int    `json:"roundNumber"`
	TurnNumber     int    `json:"turnNumber"`
	RollsRemaining int    `json:"rollsRemaining"`
}

func turnPayload(s *gamestate.State, p *gamestate.Player) turnView {
	return turnView{PlayerID: p.ID, RoundNumber: s.RoundNumber, TurnNumber: s.TurnNumber, RollsRemaining: p.RollsRemaining}
}

// advanceTurn moves to the next player or ends the game when every
// scorecard is complete.
func (r *Room) advanceTurn(ctx context.Context) {
	if r.Game.AllScorecardsComplete() {
		r.endGame(ctx)
		return
	}
	r.Game.AdvanceTurn()
	r.startTurn(ctx)
}

func (r *Room) endGame(ctx context.Context) {
	r.Game.Phase = gamestate.PhaseGameOver
	r.Game.GameCompletedAt = time.Now()
	r.Game.Rankings = r.Game.ComputeRankings()
	r.Phase = PhaseCompleted
	r.persistRoom(ctx)
	r.persistGameState(ctx)
	_ = r.ns.DeleteAlarm(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtGameOver, r.Game.Rankings))
}

type dicePayload struct {
	Dice [5]int `json:"dice"`
}

type keepPayload struct {
	KeepMask [5]bool `json:"keepMask"`
}

type categoryPayload struct {
	Category scoring.Category `json:"category"`
}

// handleDiceRoll implements DICE_ROLL: roll every die not held by the
// previous keep mask (all five on the first roll of a turn).
func (r *Room) handleDiceRoll(ctx context.Context, conn *transport.Conn, payload json.RawMessage) {
	userID := conn.Attachment.UserID
	if err := validator.ValidateDiceRoll(r.Game, r.callerFor(userID)); err != nil {
		r.sendError(conn, rejectionCode(err), err.Error())
		return
	}

	player := r.Game.Players[userID]
	for i := range player.CurrentDice {
		if !player.HasDice || !player.KeptMask[i] {
			player.CurrentDice[i] = r.rnd.Intn(6) + 1
		}
	}
	player.HasDice = true
	player.RollsRemaining--
	r.Game.Phase = gamestate.PhaseTurnDecide

	r.persistGameState(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtDiceRolled, dicePayload{Dice: player.CurrentDice}))
}

// handleDiceKeep implements DICE_KEEP: record which dice the player is
// holding for the next roll. It does not itself roll.
func (r *Room) handleDiceKeep(ctx context.Context, conn *transport.Conn, payload json.RawMessage) {
	userID := conn.Attachment.UserID
	if err := validator.ValidateDiceKeep(r.Game, r.callerFor(userID)); err != nil {
		r.sendError(conn, rejectionCode(err), err.Error())
		return
	}

	var p keepPayload
	if json.Unmarshal(payload, &p) != nil {
		r.sendError(conn, protocol.ErrInvalidMessage, "malformed keepMask")
		return
	}

	player := r.Game.Players[userID]
	player.KeptMask = p.KeepMask

	r.persistGameState(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtDiceKept, keepPayload{KeepMask: player.KeptMask}))
}

// handleCategoryScore implements CATEGORY_SCORE: apply the score and
// advance the turn.
func (r *Room) handleCategoryScore(ctx context.Context, conn *transport.Conn, payload json.RawMessage) {
	userID := conn.Attachment.UserID

	var p categoryPayload
	if json.Unmarshal(payload, &p) != nil {
		r.sendError(conn, protocol.ErrInvalidMessage, "malformed category")
		return
	}

	if err := validator.ValidateCategoryScore(r.Game, r.callerFor(userID), p.Category); err != nil {
		r.sendError(conn, rejectionCode(err), err.Error())
		return
	}

	player := r.Game.Players[userID]
	result, err := scoring.ApplyScore(player.Scorecard, p.Category, player.CurrentDice)
	if err != nil {
		r.sendError(conn, protocol.ErrUnknownCategory, err.Error())
		return
	}
	player.Scorecard = result.Scorecard

	r.persistGameState(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtCategoryScored, scoredPayload{
		PlayerID: userID, Category: p.Category, Score: result.Gained,
		RepeatBonus: result.IsRepeatBonus, UpperBonusAwarded: result.UpperBonusAwarded,
		TotalScore: player.TotalScore(),
	}))

	r.advanceTurn(ctx)
}

type scoredPayload struct {
	PlayerID          string           `json:"playerId"`
	Category          scoring.Category `json:"category"`
	Score             int              `json:"score"`
	RepeatBonus       bool             `json:"repeatBonus"`
	UpperBonusAwarded bool             `json:"upperBonusAwarded"`
	TotalScore        int              `json:"totalScore"`
}

// handleRematch implements REMATCH: preserves seats, resets scorecards
// and phase.
func (r *Room) handleRematch(ctx context.Context, conn *transport.Conn) {
	userID := conn.Attachment.UserID
	if err := validator.ValidateRematch(r.Game, r.callerFor(userID)); err != nil {
		r.sendError(conn, rejectionCode(err), err.Error())
		return
	}

	r.Phase = PhaseWaiting
	r.Game = gamestate.New()
	r.persistRoom(ctx)
	r.persistGameState(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtRematchStarted, nil))
}

// handleAddAIPlayer implements ADD_AI_PLAYER. Profile-id validity is
// this package's concern, not the validator's (validator.go comment on
// ValidateAddAIPlayer).
func (r *Room) handleAddAIPlayer(ctx context.Context, conn *transport.Conn, payload json.RawMessage) {
	userID := conn.Attachment.UserID
	if err := validator.ValidateAddAIPlayer(r.Game, r.callerFor(userID), r.freeSeatAvailable()); err != nil {
		r.sendError(conn, rejectionCode(err), err.Error())
		return
	}

	var p struct {
		ProfileID string `json:"profileId"`
	}
	if json.Unmarshal(payload, &p) != nil {
		r.sendError(conn, protocol.ErrInvalidMessage, "malformed profileId")
		return
	}
	if _, err := ai.LookupProfile(p.ProfileID); err != nil {
		r.sendError(conn, protocol.ErrInvalidMessage, "unknown AI profile")
		return
	}

	r.seatAIPlayer(ctx, p.ProfileID)
	r.persistRoom(ctx)
}
