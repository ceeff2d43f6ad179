package room

import (
	"context"
	"encoding/json"

	"github.com/seednode-labs/dicee/internal/chat"
	"github.com/seednode-labs/dicee/internal/protocol"
	"github.com/seednode-labs/dicee/internal/transport"
)

func (r *Room) sendChatError(conn *transport.Conn, code protocol.ErrorCode, message string) {
	conn.Send(protocol.NewEvent(protocol.EvtChatError, protocol.ErrorPayload{Code: code, Message: message}))
}

func chatErrorCode(err error) protocol.ErrorCode {
	switch err {
	case chat.ErrRateLimited:
		return protocol.ErrRateLimited
	case chat.ErrMessageTooLong:
		return protocol.ErrMessageTooLong
	case chat.ErrMessageNotFound:
		return protocol.ErrMessageNotFound
	default:
		return protocol.ErrInvalidMessage
	}
}

func (r *Room) displayNameFor(conn *transport.Conn) string {
	if seat, ok := r.Seats[conn.Attachment.UserID]; ok {
		return seat.DisplayName
	}
	return conn.Attachment.DisplayName
}

// handleChatCommand dispatches CHAT, QUICK_CHAT, REACTION, TYPING_START
// and TYPING_STOP onto the room's embedded chat engine.
func (r *Room) handleChatCommand(ctx context.Context, conn *transport.Conn, frame protocol.InboundFrame) {
	userID := conn.Attachment.UserID
	displayName := r.displayNameFor(conn)

	switch frame.Type {
	case protocol.CmdChat:
		r.handleChat(ctx, conn, userID, displayName, frame.Payload)
	case protocol.CmdQuickChat:
		r.handleQuickChat(ctx, conn, userID, displayName, frame.Payload)
	case protocol.CmdReaction:
		r.handleReaction(ctx, conn, userID, frame.Payload)
	case protocol.CmdTypingStart:
		r.handleTypingStart(userID, displayName)
	case protocol.CmdTypingStop:
		r.handleTypingStop(userID, displayName)
	}
}

type chatPayload struct {
	Content string `json:"content"`
}

func (r *Room) handleChat(ctx context.Context, conn *transport.Conn, userID, displayName string, payload json.RawMessage) {
	var p chatPayload
	if json.Unmarshal(payload, &p) != nil {
		r.sendChatError(conn, protocol.ErrInvalidMessage, "malformed content")
		return
	}

	evt, err := r.Chat.HandleText(userID, displayName, p.Content)
	if err != nil {
		r.sendChatError(conn, chatErrorCode(err), err.Error())
		return
	}

	r.persistChat(ctx, evt.History)
	r.persistChatLimits(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtChatMessage, evt.Message))
}

type quickChatPayload struct {
	Key string `json:"key"`
}

func (r *Room) handleQuickChat(ctx context.Context, conn *transport.Conn, userID, displayName string, payload json.RawMessage) {
	var p quickChatPayload
	if json.Unmarshal(payload, &p) != nil {
		r.sendChatError(conn, protocol.ErrInvalidMessage, "malformed key")
		return
	}

	evt, err := r.Chat.HandleQuick(userID, displayName, p.Key)
	if err != nil {
		r.sendChatError(conn, chatErrorCode(err), err.Error())
		return
	}

	r.persistChat(ctx, evt.History)
	r.persistChatLimits(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtChatMessage, evt.Message))
}

type reactionPayload struct {
	MessageID string             `json:"messageId"`
	Token     chat.ReactionToken `json:"token"`
	Add       bool               `json:"add"`
}

func (r *Room) handleReaction(ctx context.Context, conn *transport.Conn, userID string, payload json.RawMessage) {
	var p reactionPayload
	if json.Unmarshal(payload, &p) != nil {
		r.sendChatError(conn, protocol.ErrInvalidMessage, "malformed reaction")
		return
	}

	update, err := r.Chat.HandleReaction(userID, p.MessageID, p.Token, p.Add)
	if err != nil {
		r.sendChatError(conn, chatErrorCode(err), err.Error())
		return
	}

	r.persistChat(ctx, r.Chat.History())
	r.persistChatLimits(ctx)
	r.broadcast(protocol.NewEvent(protocol.EvtReactionUpdate, update))
}

type typingPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Typing      bool   `json:"typing"`
}

func (r *Room) handleTypingStart(userID, displayName string) {
	if !r.Chat.TypingStart(userID) {
		return
	}
	r.broadcast(protocol.NewEvent(protocol.EvtTypingUpdate, typingPayload{
		UserID: userID, DisplayName: displayName, Typing: true,
	}))
}

func (r *Room) handleTypingStop(userID, displayName string) {
	r.Chat.TypingStop(userID)
	r.broadcast(protocol.NewEvent(protocol.EvtTypingUpdate, typingPayload{
		UserID: userID, DisplayName: displayName, Typing: false,
	}))
}
