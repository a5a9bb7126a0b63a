package repository

import (
	"github.com/rentnest/rentchat-backend/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message and records the sender's own read in the same
// transaction, so a sender never owes itself an unread message.
func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		read := models.MessageRead{
			MessageID: message.ID,
			UserID:    message.SenderID,
		}
		if err := tx.Create(&read).Error; err != nil {
			return err
		}
		message.Reads = append(message.Reads, read)
		return nil
	})
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Reads").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Reads").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListByConversation returns up to limit messages in chronological order.
// A non-zero cursor fetches the page of messages older than that message id.
// Total order is (created_at, id); id is assigned by a strictly increasing
// sequence, so ties on created_at resolve in insertion order.
func (r *MessageRepository) ListByConversation(conversationID uint, cursor uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	q := r.db.Preload("Reads").Where("conversation_id = ?", conversationID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}

	var messages []models.Message
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// MarkConversationRead inserts a read row for every message in the
// conversation the user has not read and did not send. Returns how many
// messages were newly marked; calling again immediately returns 0.
// Concurrent calls commute because the insert is conflict-free per (message,
// user) pair.
func (r *MessageRepository) MarkConversationRead(conversationID, userID uint) (int64, error) {
	res := r.db.Exec(`
		INSERT INTO message_reads (message_id, user_id, created_at)
		SELECT m.id, ?, NOW()
		FROM messages m
		WHERE m.conversation_id = ?
		  AND m.sender_id <> ?
		  AND m.message_type <> 'system'
		  AND NOT EXISTS (
			SELECT 1 FROM message_reads r
			WHERE r.message_id = m.id AND r.user_id = ?
		  )
		ON CONFLICT (message_id, user_id) DO NOTHING
	`, userID, conversationID, userID, userID)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// UnreadCount counts messages the user has neither sent nor read. System
// messages never count as unread.
func (r *MessageRepository) UnreadCount(conversationID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND message_type <> ?",
			conversationID, userID, models.SystemMessage).
		Where("NOT EXISTS (SELECT 1 FROM message_reads r WHERE r.message_id = messages.id AND r.user_id = ?)", userID).
		Count(&count).Error
	return count, err
}
