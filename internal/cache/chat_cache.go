package cache

import (
	"fmt"
	"time"

	"github.com/rentnest/rentchat-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// MessagePageTTL bounds staleness of the cached first page of a
	// conversation; writes invalidate it eagerly, the TTL covers missed
	// invalidations.
	MessagePageTTL = 5 * time.Minute
)

// Store is the byte-oriented backend the chat cache writes through.
// RedisCache implements it; tests substitute an in-memory map.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(keys ...string) error
}

// ChatCache caches the hot read path: the first (newest) page of a
// conversation's messages. Every method tolerates a nil receiver or a nil
// store so the service runs cache-less when Redis is down.
type ChatCache struct {
	store Store
}

func NewChatCache(store Store) *ChatCache {
	return &ChatCache{store: store}
}

func messagePageKey(conversationID uint) string {
	return fmt.Sprintf("chat:conv:%d:page0", conversationID)
}

// GetMessagePage retrieves the cached newest page of a conversation.
func (cc *ChatCache) GetMessagePage(conversationID uint) ([]models.Message, bool) {
	if cc == nil || cc.store == nil {
		return nil, false
	}
	data, err := cc.store.Get(messagePageKey(conversationID))
	if err != nil || data == nil {
		return nil, false
	}

	var messages []models.Message
	if err := msgpack.Unmarshal(data, &messages); err != nil {
		return nil, false
	}
	return messages, true
}

// SetMessagePage caches the newest page of a conversation.
func (cc *ChatCache) SetMessagePage(conversationID uint, messages []models.Message) error {
	if cc == nil || cc.store == nil {
		return nil
	}
	data, err := msgpack.Marshal(messages)
	if err != nil {
		return err
	}
	return cc.store.Set(messagePageKey(conversationID), data, MessagePageTTL)
}

// InvalidateConversation drops the cached page after a send or a mark-read,
// since both change what a participant should see.
func (cc *ChatCache) InvalidateConversation(conversationID uint) error {
	if cc == nil || cc.store == nil {
		return nil
	}
	return cc.store.Delete(messagePageKey(conversationID))
}
