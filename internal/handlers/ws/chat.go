package ws

import (
	"errors"

	"github.com/rentnest/rentchat-backend/internal/service"
)

// ChatFrame sends a message over the live channel. It runs the same
// persistence path as the HTTP send, then acknowledges with the durable
// message id; a failure comes back as an error frame carrying the client_id.
type ChatFrame struct {
	ConversationID uint   `json:"conversation_id"`
	ClientID       string `json:"client_id"`
	Content        string `json:"content"`
}

func (f *ChatFrame) GetType() string {
	return "chat"
}

func (f *ChatFrame) Process(ctx *FrameContext) error {
	message, err := ctx.Chat.SendMessage(f.ConversationID, ctx.UserID, f.ClientID, f.Content)
	if err != nil {
		SendError(ctx.Session, errorCode(err), err.Error(), f.ClientID)
		return nil
	}

	// A stale page heals via TTL, so invalidation is best-effort.
	_ = ctx.Cache.InvalidateConversation(f.ConversationID)

	ack, err := Serialize("ack", AckPayload{ClientID: message.ClientID, MessageID: message.ID})
	if err != nil {
		return err
	}
	ctx.Session.Send(ack)
	return nil
}

// TypingFrame relays an ephemeral typing signal to the conversation room.
type TypingFrame struct {
	ConversationID uint `json:"conversation_id"`
	Started        bool `json:"started"`
}

func (f *TypingFrame) GetType() string {
	return "typing"
}

func (f *TypingFrame) Process(ctx *FrameContext) error {
	if err := ctx.Chat.NotifyTyping(f.ConversationID, ctx.UserID, f.Started); err != nil {
		SendError(ctx.Session, errorCode(err), err.Error(), "")
	}
	return nil
}

// PingFrame is a client keepalive; the reply lets clients measure latency.
type PingFrame struct {
}

func (f *PingFrame) GetType() string {
	return "ping"
}

func (f *PingFrame) Process(ctx *FrameContext) error {
	pong, err := Serialize("pong", nil)
	if err != nil {
		return err
	}
	ctx.Session.Send(pong)
	return nil
}

// errorCode maps service errors onto stable wire codes.
func errorCode(err error) string {
	var validation *service.ValidationError
	var authorization *service.AuthorizationError
	var notFound *service.NotFoundError
	switch {
	case errors.As(err, &validation):
		return "invalid_request"
	case errors.As(err, &authorization):
		return "not_participant"
	case errors.As(err, &notFound):
		return "not_found"
	default:
		return "store_error"
	}
}
