package repository

import (
	"time"

	"github.com/rentnest/rentchat-backend/internal/models"
)

// ConversationRepositoryInterface defines the contract for conversation directory operations
type ConversationRepositoryInterface interface {
	FindOrCreate(userIDs []uint, listingID *uint) (*models.Conversation, bool, error)
	FindByID(id uint) (*models.Conversation, error)
	ListForUser(userID uint, limit int) ([]models.Conversation, error)
	UpdateLastMessage(conversationID uint, content string, senderID uint, sentAt time.Time) error
}

// MessageRepositoryInterface defines the contract for message store operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	ListByConversation(conversationID uint, cursor uint, limit int) ([]models.Message, error)
	MarkConversationRead(conversationID, userID uint) (int64, error)
	UnreadCount(conversationID, userID uint) (int64, error)
}
