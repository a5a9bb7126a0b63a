package repository

import (
	"errors"
	"time"

	"github.com/rentnest/rentchat-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// FindOrCreate resolves the single conversation for a participant set and an
// optional listing scope, creating it if missing. Two concurrent callers with
// the same key converge on one row: the unique index on participant_key makes
// the second insert a no-op, and the loser refetches the winner's row.
// The returned bool is true when this call created the conversation.
func (r *ConversationRepository) FindOrCreate(userIDs []uint, listingID *uint) (*models.Conversation, bool, error) {
	key := models.ParticipantKey(userIDs, listingID)

	var existing models.Conversation
	err := r.db.Preload("Participants").Where("participant_key = ?", key).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := false
	err = r.db.Transaction(func(tx *gorm.DB) error {
		row := models.Conversation{
			ParticipantKey: key,
			ListingID:      listingID,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "participant_key"}},
			DoNothing: true,
		}).Create(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the creation race; the winner's row exists now.
			return nil
		}
		created = true

		participants := make([]models.ConversationParticipant, 0, len(userIDs))
		for i, id := range userIDs {
			participants = append(participants, models.ConversationParticipant{
				ConversationID: row.ID,
				UserID:         id,
				Position:       i,
			})
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, false, err
	}

	var conv models.Conversation
	if err := r.db.Preload("Participants").Where("participant_key = ?", key).First(&conv).Error; err != nil {
		return nil, false, err
	}
	return &conv, created, nil
}

func (r *ConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Preload("Participants").First(&conv, id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListForUser returns the user's conversations ordered by most recent
// activity. Conversations with no message yet sort last.
func (r *ConversationRepository) ListForUser(userID uint, limit int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	var conversations []models.Conversation
	err := r.db.Preload("Participants").
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Order("conversations.last_message_at DESC NULLS LAST, conversations.id DESC").
		Limit(limit).
		Find(&conversations).Error
	return conversations, err
}

// UpdateLastMessage overwrites the denormalized snapshot, last writer wins.
// The snapshot is advisory; unread counts never derive from it.
func (r *ConversationRepository) UpdateLastMessage(conversationID uint, content string, senderID uint, sentAt time.Time) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_content":   content,
			"last_message_sender_id": senderID,
			"last_message_at":        sentAt,
		}).Error
}
