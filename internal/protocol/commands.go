// Package protocol defines the closed set of inbound command types and
// outbound event types exchanged over a room or lobby connection, and
// the envelope they travel in. It has no behavior of its own: it is
// the wire contract that internal/transport parses against and that
// internal/room and internal/lobby produce.
package protocol

// CommandType is one of the closed set of inbound frame types a client
// may send.
type CommandType string

const (
	CmdStartGame      CommandType = "START_GAME"
	CmdQuickPlayStart CommandType = "QUICK_PLAY_START"
	CmdDiceRoll       CommandType = "DICE_ROLL"
	CmdDiceKeep       CommandType = "DICE_KEEP"
	CmdCategoryScore  CommandType = "CATEGORY_SCORE"
	CmdRematch        CommandType = "REMATCH"
	CmdAddAIPlayer    CommandType = "ADD_AI_PLAYER"
	CmdPing           CommandType = "PING"
	CmdChat           CommandType = "CHAT"
	CmdQuickChat      CommandType = "QUICK_CHAT"
	CmdReaction       CommandType = "REACTION"
	CmdTypingStart    CommandType = "TYPING_START"
	CmdTypingStop     CommandType = "TYPING_STOP"

	CmdLobbyChat          CommandType = "LOBBY_CHAT"
	CmdGetRooms           CommandType = "GET_ROOMS"
	CmdGetOnlineUsers     CommandType = "GET_ONLINE_USERS"
	CmdRequestJoin        CommandType = "REQUEST_JOIN"
	CmdCancelJoinRequest  CommandType = "CANCEL_JOIN_REQUEST"
	CmdSendInvite         CommandType = "SEND_INVITE"
	CmdCancelInvite       CommandType = "CANCEL_INVITE"
)

// EventType is one of the closed set of outbound frame types the server
// may send.
type EventType string

const (
	EvtConnected          EventType = "CONNECTED"
	EvtPlayerJoined       EventType = "PLAYER_JOINED"
	EvtSpectatorJoined    EventType = "SPECTATOR_JOINED"
	EvtPlayerLeft         EventType = "PLAYER_LEFT"
	EvtPlayerDisconnected EventType = "PLAYER_DISCONNECTED"
	EvtPlayerReconnected  EventType = "PLAYER_RECONNECTED"
	EvtPlayerRemoved      EventType = "PLAYER_REMOVED"
	EvtAIPlayerJoined     EventType = "AI_PLAYER_JOINED"
	EvtGameStarting       EventType = "GAME_STARTING"
	EvtGameStarted        EventType = "GAME_STARTED"
	EvtQuickPlayStarted   EventType = "QUICK_PLAY_STARTED"
	EvtTurnStarted        EventType = "TURN_STARTED"
	EvtTurnChanged        EventType = "TURN_CHANGED"
	EvtDiceRolled         EventType = "DICE_ROLLED"
	EvtDiceKept           EventType = "DICE_KEPT"
	EvtCategoryScored     EventType = "CATEGORY_SCORED"
	EvtTurnSkipped        EventType = "TURN_SKIPPED"
	EvtPlayerAFK          EventType = "PLAYER_AFK"
	EvtGameOver           EventType = "GAME_OVER"
	EvtRematchStarted     EventType = "REMATCH_STARTED"
	EvtError              EventType = "ERROR"
	EvtPong               EventType = "PONG"
	EvtAIThinking         EventType = "AI_THINKING"
	EvtAIRolling          EventType = "AI_ROLLING"
	EvtAIKeeping          EventType = "AI_KEEPING"
	EvtAIScoring          EventType = "AI_SCORING"

	EvtChatMessage    EventType = "CHAT_MESSAGE"
	EvtChatHistory    EventType = "CHAT_HISTORY"
	EvtReactionUpdate EventType = "REACTION_UPDATE"
	EvtTypingUpdate   EventType = "TYPING_UPDATE"
	EvtChatError      EventType = "CHAT_ERROR"

	EvtPresenceInit         EventType = "PRESENCE_INIT"
	EvtPresenceJoin         EventType = "PRESENCE_JOIN"
	EvtPresenceLeave        EventType = "PRESENCE_LEAVE"
	EvtLobbyRoomsList       EventType = "LOBBY_ROOMS_LIST"
	EvtLobbyRoomUpdate      EventType = "LOBBY_ROOM_UPDATE"
	EvtLobbyChatMessage     EventType = "LOBBY_CHAT_MESSAGE"
	EvtLobbyChatHistory     EventType = "LOBBY_CHAT_HISTORY"
	EvtLobbyOnlineUsers     EventType = "LOBBY_ONLINE_USERS"
	EvtInviteReceived       EventType = "INVITE_RECEIVED"
	EvtInviteCancelled      EventType = "INVITE_CANCELLED"
	EvtJoinRequestSent      EventType = "JOIN_REQUEST_SENT"
	EvtJoinRequestCancelled EventType = "JOIN_REQUEST_CANCELLED"
	EvtJoinRequestError     EventType = "JOIN_REQUEST_ERROR"
	EvtLobbyHighlight       EventType = "LOBBY_HIGHLIGHT"
	EvtLobbyError           EventType = "LOBBY_ERROR"
)

// ErrorCode is the closed set of machine-readable error identifiers
// sent in ERROR/CHAT_ERROR/LOBBY_ERROR payloads.
type ErrorCode string

const (
	ErrMissingToken     ErrorCode = "MISSING_TOKEN"
	ErrInvalidToken     ErrorCode = "INVALID_TOKEN"
	ErrExpiredToken     ErrorCode = "EXPIRED_TOKEN"
	ErrJWKSUnavailable  ErrorCode = "JWKS_UNAVAILABLE"
	ErrBinaryUnsupported ErrorCode = "BINARY_UNSUPPORTED"
	ErrInvalidMessage   ErrorCode = "INVALID_MESSAGE"
	ErrUnknownCommand   ErrorCode = "UNKNOWN_COMMAND"

	ErrNotYourTurn           ErrorCode = "NOT_YOUR_TURN"
	ErrInvalidPhase          ErrorCode = "INVALID_PHASE"
	ErrNoRollsRemaining      ErrorCode = "NO_ROLLS_REMAINING"
	ErrCategoryAlreadyScored ErrorCode = "CATEGORY_ALREADY_SCORED"
	ErrUnknownCategory       ErrorCode = "UNKNOWN_CATEGORY"
	ErrNotHost               ErrorCode = "NOT_HOST"
	ErrNotEnoughPlayers      ErrorCode = "NOT_ENOUGH_PLAYERS"
	ErrGameInProgress        ErrorCode = "GAME_IN_PROGRESS"
	ErrGameNotStarted        ErrorCode = "GAME_NOT_STARTED"

	ErrRateLimited     ErrorCode = "RATE_LIMITED"
	ErrMessageTooLong  ErrorCode = "MESSAGE_TOO_LONG"
	ErrMessageNotFound ErrorCode = "MESSAGE_NOT_FOUND"

	ErrRequestExpired        ErrorCode = "REQUEST_EXPIRED"
	ErrInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrNotRequester          ErrorCode = "NOT_REQUESTER"
	ErrRequestNotFound       ErrorCode = "REQUEST_NOT_FOUND"
	ErrDuplicateRequest      ErrorCode = "DUPLICATE_REQUEST"
	ErrMaxRequestsExceeded   ErrorCode = "MAX_REQUESTS_EXCEEDED"

	ErrRoomFull     ErrorCode = "ROOM_FULL"
	ErrRoomNotFound ErrorCode = "ROOM_NOT_FOUND"
)
