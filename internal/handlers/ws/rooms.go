package ws

import (
	"github.com/rentnest/rentchat-backend/internal/hub"
)

// JoinFrame subscribes the session to a conversation's room. Membership is
// checked against the directory before the join so outsiders cannot listen
// in.
type JoinFrame struct {
	ConversationID uint `json:"conversation_id"`
}

func (f *JoinFrame) GetType() string {
	return "join"
}

func (f *JoinFrame) Process(ctx *FrameContext) error {
	if err := ctx.Chat.AuthorizeParticipant(f.ConversationID, ctx.UserID); err != nil {
		SendError(ctx.Session, errorCode(err), err.Error(), "")
		return nil
	}
	ctx.Hub.Join(hub.ConversationRoom(f.ConversationID), ctx.Session)
	return nil
}

// LeaveFrame unsubscribes the session from a conversation's room. Leaving a
// room the session never joined is a no-op.
type LeaveFrame struct {
	ConversationID uint `json:"conversation_id"`
}

func (f *LeaveFrame) GetType() string {
	return "leave"
}

func (f *LeaveFrame) Process(ctx *FrameContext) error {
	ctx.Hub.Leave(hub.ConversationRoom(f.ConversationID), ctx.Session)
	return nil
}
