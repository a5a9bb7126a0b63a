package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Conversation is a persistent thread between a fixed set of participants,
// optionally scoped to a listing. Uniqueness of the logical thread is enforced
// by ParticipantKey, which encodes the sorted participant set plus the scope.
type Conversation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ParticipantKey string `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"`
	ListingID      *uint  `gorm:"index" json:"listing_id"` // null when the thread is not about a listing

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants"`

	// Denormalized last-message snapshot, advisory only. Used to order list
	// views; the message table remains the source of truth.
	LastMessageContent  string     `gorm:"type:text" json:"-"`
	LastMessageSenderID uint       `json:"-"`
	LastMessageAt       *time.Time `gorm:"index" json:"-"`
}

// ConversationParticipant is one member of a conversation. Position preserves
// the display order the thread was created with; lookup ignores it.
type ConversationParticipant struct {
	ConversationID uint `gorm:"primaryKey" json:"-"`
	UserID         uint `gorm:"primaryKey;index" json:"user_id"`
	Position       int  `gorm:"not null;default:0" json:"position"`
}

// ParticipantKey builds the canonical lookup key for a participant set and an
// optional listing scope. The ids are deduplicated and sorted so argument
// order never matters.
func ParticipantKey(userIDs []uint, listingID *uint) string {
	seen := make(map[uint]struct{}, len(userIDs))
	ids := make([]uint, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	key := "u:" + strings.Join(parts, ":")
	if listingID != nil {
		key += fmt.Sprintf("|l:%d", *listingID)
	}
	return key
}

// ParticipantIDs returns the member ids in display order.
func (c *Conversation) ParticipantIDs() []uint {
	ids := make([]uint, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// HasParticipant reports whether userID is a member of the conversation.
func (c *Conversation) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// LastMessageSummary is the denormalized snapshot exposed on list views.
type LastMessageSummary struct {
	Content  string    `json:"content"`
	SenderID uint      `json:"sender_id"`
	SentAt   time.Time `json:"sent_at"`
}

type ConversationResponse struct {
	ID           uint                `json:"id"`
	ListingID    *uint               `json:"listing_id,omitempty"`
	Participants []uint              `json:"participants"`
	LastMessage  *LastMessageSummary `json:"last_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

func (c *Conversation) ToResponse() ConversationResponse {
	resp := ConversationResponse{
		ID:           c.ID,
		ListingID:    c.ListingID,
		Participants: c.ParticipantIDs(),
		CreatedAt:    c.CreatedAt,
	}
	if c.LastMessageAt != nil {
		resp.LastMessage = &LastMessageSummary{
			Content:  c.LastMessageContent,
			SenderID: c.LastMessageSenderID,
			SentAt:   *c.LastMessageAt,
		}
	}
	return resp
}
