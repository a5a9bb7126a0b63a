package models

import (
	"time"
)

type MessageType string

const (
	TextMessage   MessageType = "text"
	SystemMessage MessageType = "system"
)

// Message is an immutable chat message. Only its read-state grows after
// creation; content and ordering never change.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Client-generated UUID so a retried send resolves to the original row
	// instead of creating a duplicate.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"`

	ConversationID uint `gorm:"not null;index:idx_conversation_created" json:"conversation_id"`
	SenderID       uint `gorm:"not null;uniqueIndex:idx_client_sender" json:"sender_id"`

	Content     string      `gorm:"type:text;not null" json:"content"`
	MessageType MessageType `gorm:"type:varchar(20);default:'text'" json:"message_type"`

	Reads []MessageRead `gorm:"foreignKey:MessageID" json:"-"`
}

// MessageRead records that a user has acknowledged a message. Rows are only
// ever inserted, never updated or deleted.
type MessageRead struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageResponse struct {
	ID             uint        `json:"id"`
	ClientID       string      `json:"client_id"`
	ConversationID uint        `json:"conversation_id"`
	SenderID       uint        `json:"sender_id"`
	Content        string      `json:"content"`
	MessageType    MessageType `json:"message_type"`
	ReadBy         []uint      `json:"read_by"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	readBy := make([]uint, 0, len(m.Reads))
	for _, r := range m.Reads {
		readBy = append(readBy, r.UserID)
	}
	return MessageResponse{
		ID:             m.ID,
		ClientID:       m.ClientID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		MessageType:    m.MessageType,
		ReadBy:         readBy,
		CreatedAt:      m.CreatedAt,
	}
}

// IsReadBy reports whether userID has acknowledged the message.
func (m *Message) IsReadBy(userID uint) bool {
	for _, r := range m.Reads {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
