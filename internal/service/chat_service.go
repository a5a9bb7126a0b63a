package service

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/rentnest/rentchat-backend/internal/external"
	"github.com/rentnest/rentchat-backend/internal/hub"
	"github.com/rentnest/rentchat-backend/internal/models"
	"github.com/rentnest/rentchat-backend/internal/repository"
	"github.com/rentnest/rentchat-backend/internal/validation"
	"gorm.io/gorm"
)

const conversationStartedText = "Conversation started"

// Broadcaster is the live fan-out the service instructs after durable writes.
// Delivery is best-effort; a failed or absent listener never fails the
// enclosing operation.
type Broadcaster interface {
	Broadcast(roomKey string, payload []byte, excludeUserID uint) int
}

// ChatService orchestrates the conversation directory, the message store and
// the delivery router. Persistence always completes before broadcast, so a
// crash between the two loses the live notification, never the message.
type ChatService struct {
	conversationRepo repository.ConversationRepositoryInterface
	messageRepo      repository.MessageRepositoryInterface
	router           Broadcaster
	users            external.UserDirectory
	listings         external.ListingCatalog
}

func NewChatService(
	conversationRepo repository.ConversationRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	router Broadcaster,
	users external.UserDirectory,
	listings external.ListingCatalog,
) *ChatService {
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		router:           router,
		users:            users,
		listings:         listings,
	}
}

// StartConversation resolves the one conversation between initiator and
// recipient (optionally scoped to a listing), creating it on first contact.
// Creation appends a system message so the thread has an anchor in the store.
func (s *ChatService) StartConversation(initiatorID, recipientID uint, listingID *uint) (*models.Conversation, error) {
	if initiatorID == 0 || recipientID == 0 {
		return nil, &ValidationError{Field: "participant", Reason: "user id is required"}
	}
	if initiatorID == recipientID {
		return nil, &ValidationError{Field: "participant", Reason: "cannot start a conversation with yourself"}
	}

	conv, created, err := s.conversationRepo.FindOrCreate([]uint{initiatorID, recipientID}, listingID)
	if err != nil {
		return nil, &TransientStoreError{Op: "find_or_create_conversation", Err: err}
	}

	if created {
		system := &models.Message{
			ClientID:       uuid.NewString(),
			ConversationID: conv.ID,
			SenderID:       initiatorID,
			Content:        conversationStartedText,
			MessageType:    models.SystemMessage,
		}
		if err := s.messageRepo.Create(system); err != nil {
			return nil, &TransientStoreError{Op: "append_system_message", Err: err}
		}
		s.updateSummary(conv, system)
	}

	return conv, nil
}

// SendMessage validates and persists a message, updates the directory's
// last-message snapshot, then fans the message out to the conversation room.
// A repeated client_id from the same sender resolves to the original message
// instead of appending a duplicate.
func (s *ChatService) SendMessage(conversationID, senderID uint, clientID, content string) (*models.Message, error) {
	content, fits := validation.ValidateContent(content, validation.MaxMessageLength())
	if !fits {
		return nil, &ValidationError{Field: "content", Reason: "exceeds maximum length"}
	}
	if content == "" {
		return nil, &ValidationError{Field: "content", Reason: "content is required"}
	}

	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		return nil, storeErr("find_conversation", "conversation", conversationID, err)
	}
	if !conv.HasParticipant(senderID) {
		return nil, &AuthorizationError{UserID: senderID, ConversationID: conversationID}
	}

	if clientID == "" {
		clientID = uuid.NewString()
	} else if existing, err := s.messageRepo.FindByClientID(clientID, senderID); err == nil {
		// Retried send: the original append already broadcast.
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &TransientStoreError{Op: "find_by_client_id", Err: err}
	}

	message := &models.Message{
		ClientID:       clientID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    models.TextMessage,
	}
	if err := s.messageRepo.Create(message); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race against a concurrent retry of the same client_id;
			// the winner's row already exists and already broadcast.
			if existing, findErr := s.messageRepo.FindByClientID(clientID, senderID); findErr == nil {
				return existing, nil
			}
		}
		return nil, &TransientStoreError{Op: "append_message", Err: err}
	}

	s.updateSummary(conv, message)
	s.broadcastMessage(conv, message)

	return message, nil
}

// AuthorizeParticipant verifies the user belongs to the conversation. Used by
// the live channel before a room join.
func (s *ChatService) AuthorizeParticipant(conversationID, userID uint) error {
	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		return storeErr("find_conversation", "conversation", conversationID, err)
	}
	if !conv.HasParticipant(userID) {
		return &AuthorizationError{UserID: userID, ConversationID: conversationID}
	}
	return nil
}

// MarkRead acknowledges every unread message in the conversation for the
// user. Idempotent: a second call returns 0 and mutates nothing.
func (s *ChatService) MarkRead(conversationID, userID uint) (int64, error) {
	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		return 0, storeErr("find_conversation", "conversation", conversationID, err)
	}
	if !conv.HasParticipant(userID) {
		return 0, &AuthorizationError{UserID: userID, ConversationID: conversationID}
	}

	marked, err := s.messageRepo.MarkConversationRead(conversationID, userID)
	if err != nil {
		return 0, &TransientStoreError{Op: "mark_conversation_read", Err: err}
	}
	return marked, nil
}

// ListMessages returns a chronological page of the conversation for a
// participant. This is the catch-up path after a reconnect.
func (s *ChatService) ListMessages(conversationID, userID uint, cursor uint, limit int) ([]models.Message, error) {
	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		return nil, storeErr("find_conversation", "conversation", conversationID, err)
	}
	if !conv.HasParticipant(userID) {
		return nil, &AuthorizationError{UserID: userID, ConversationID: conversationID}
	}

	messages, err := s.messageRepo.ListByConversation(conversationID, cursor, limit)
	if err != nil {
		return nil, &TransientStoreError{Op: "list_messages", Err: err}
	}
	return messages, nil
}

// ConversationListItem is one entry of the user's conversation list,
// decorated with the per-user unread count and, when the collaborators are
// reachable, the peer profile and listing snippet.
type ConversationListItem struct {
	Conversation models.ConversationResponse `json:"conversation"`
	UnreadCount  int64                       `json:"unread_count"`
	Peer         *external.UserProfile       `json:"peer,omitempty"`
	Listing      *external.ListingSummary    `json:"listing,omitempty"`
}

// ListConversations returns the user's conversations ordered by most recent
// activity, each with its unread count. Decoration failures degrade to bare
// summaries rather than failing the list.
func (s *ChatService) ListConversations(userID uint, limit int) ([]ConversationListItem, error) {
	conversations, err := s.conversationRepo.ListForUser(userID, limit)
	if err != nil {
		return nil, &TransientStoreError{Op: "list_conversations", Err: err}
	}

	items := make([]ConversationListItem, 0, len(conversations))
	for i := range conversations {
		conv := &conversations[i]
		unread, err := s.messageRepo.UnreadCount(conv.ID, userID)
		if err != nil {
			return nil, &TransientStoreError{Op: "unread_count", Err: err}
		}
		items = append(items, ConversationListItem{
			Conversation: conv.ToResponse(),
			UnreadCount:  unread,
		})
	}

	s.decorate(userID, conversations, items)
	return items, nil
}

// NotifyTyping fans a typing signal out to the conversation room. Nothing is
// persisted; sessions not currently joined receive nothing.
func (s *ChatService) NotifyTyping(conversationID, userID uint, started bool) error {
	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		return storeErr("find_conversation", "conversation", conversationID, err)
	}
	if !conv.HasParticipant(userID) {
		return &AuthorizationError{UserID: userID, ConversationID: conversationID}
	}

	eventType := hub.EventTypingStart
	if !started {
		eventType = hub.EventTypingStop
	}
	room := hub.ConversationRoom(conversationID)
	payload, err := hub.EncodeEvent(eventType, hub.TypingPayload{Room: room, UserID: userID})
	if err != nil {
		log.Printf("Error encoding typing event for conversation %d: %v", conversationID, err)
		return nil
	}
	s.router.Broadcast(room, payload, userID)
	return nil
}

// updateSummary overwrites the directory's denormalized snapshot. The
// snapshot only orders list views, so a failure is logged and the next send
// heals it.
func (s *ChatService) updateSummary(conv *models.Conversation, message *models.Message) {
	sentAt := message.CreatedAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	if err := s.conversationRepo.UpdateLastMessage(conv.ID, message.Content, message.SenderID, sentAt); err != nil {
		log.Printf("Error updating summary for conversation %d: %v", conv.ID, err)
		return
	}
	conv.LastMessageContent = message.Content
	conv.LastMessageSenderID = message.SenderID
	conv.LastMessageAt = &sentAt
}

// broadcastMessage emits message-created to the conversation room and a
// conversation-updated nudge to each other participant's personal room.
// Failures are logged and swallowed: persistence already succeeded.
func (s *ChatService) broadcastMessage(conv *models.Conversation, message *models.Message) {
	payload, err := hub.EncodeEvent(hub.EventMessageCreated, message.ToResponse())
	if err != nil {
		log.Printf("Error encoding message %d for broadcast: %v", message.ID, err)
		return
	}
	s.router.Broadcast(hub.ConversationRoom(conv.ID), payload, message.SenderID)

	nudge, err := hub.EncodeEvent(hub.EventConversationUpdated, conv.ToResponse())
	if err != nil {
		log.Printf("Error encoding conversation %d update: %v", conv.ID, err)
		return
	}
	for _, p := range conv.Participants {
		if p.UserID == message.SenderID {
			continue
		}
		s.router.Broadcast(hub.UserRoom(p.UserID), nudge, 0)
	}
}

// decorate attaches peer profiles and listing snippets fetched from the
// identity and listing collaborators. Best-effort; a failed fetch leaves the
// bare summary in place.
func (s *ChatService) decorate(userID uint, conversations []models.Conversation, items []ConversationListItem) {
	if s.users != nil {
		peerIDs := make([]uint, 0, len(conversations))
		for i := range conversations {
			for _, p := range conversations[i].Participants {
				if p.UserID != userID {
					peerIDs = append(peerIDs, p.UserID)
				}
			}
		}
		profiles, err := s.users.GetProfiles(peerIDs)
		if err != nil {
			log.Printf("Error fetching peer profiles for user %d: %v", userID, err)
		} else {
			for i := range conversations {
				for _, p := range conversations[i].Participants {
					if p.UserID == userID {
						continue
					}
					if profile, ok := profiles[p.UserID]; ok {
						items[i].Peer = &profile
					}
					break
				}
			}
		}
	}

	if s.listings != nil {
		for i := range conversations {
			if conversations[i].ListingID == nil {
				continue
			}
			listing, err := s.listings.GetListing(*conversations[i].ListingID)
			if err != nil {
				log.Printf("Error fetching listing %d: %v", *conversations[i].ListingID, err)
				continue
			}
			items[i].Listing = listing
		}
	}
}
