package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rentnest/rentchat-backend/internal/cache"
	"github.com/rentnest/rentchat-backend/internal/httpx"
	"github.com/rentnest/rentchat-backend/internal/models"
	"github.com/rentnest/rentchat-backend/internal/service"
	"github.com/rentnest/rentchat-backend/internal/validation"
)

// newestPageSize is the canonical size of the cached newest page. The page is
// always fetched and cached at this size and trimmed per request, so a
// small-limit request can never shrink what later callers are served.
const newestPageSize = 100

type ChatHandler struct {
	chat      *service.ChatService
	chatCache *cache.ChatCache
}

func NewChatHandler(chat *service.ChatService, chatCache *cache.ChatCache) *ChatHandler {
	return &ChatHandler{
		chat:      chat,
		chatCache: chatCache,
	}
}

type startConversationInput struct {
	RecipientID uint  `json:"recipient_id"`
	ListingID   *uint `json:"listing_id"`
}

// StartConversation resolves (or creates) the conversation between the caller
// and a recipient, optionally scoped to a listing.
func (h *ChatHandler) StartConversation(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input startConversationInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.RecipientID == 0 {
		return httpx.BadRequest(c, "missing_recipient", "recipient_id is required")
	}

	conv, err := h.chat.StartConversation(userID, input.RecipientID, input.ListingID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(conv.ToResponse())
}

// GetConversations lists the caller's conversations, most recent activity
// first, each with its unread count.
func (h *ChatHandler) GetConversations(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	limit := validation.ParseLimit(c.Query("limit"), 50, 100)
	items, err := h.chat.ListConversations(userID, limit)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"conversations": items,
		"count":         len(items),
	})
}

// GetMessages returns one chronological page of a conversation. A cursor
// requests messages older than that message id; the newest page is served
// from cache when possible.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	conversationID, ok := validation.ParseUintParam(c.Params("id"))
	if !ok {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	limit := validation.ParseLimit(c.Query("limit"), 50, 100)
	var cursor uint
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		parsed, err := strconv.ParseUint(cursorStr, 10, 32)
		if err != nil {
			return httpx.BadRequest(c, "invalid_cursor", "Invalid cursor")
		}
		cursor = uint(parsed)
	}

	pageLimit := limit
	if cursor == 0 {
		pageLimit = newestPageSize
	}

	var messages []models.Message
	if cursor == 0 {
		if cached, ok := h.chatCache.GetMessagePage(conversationID); ok {
			// The cache never bypasses authorization.
			if err := h.chat.AuthorizeParticipant(conversationID, userID); err != nil {
				return serviceError(c, err)
			}
			messages = cached
		}
	}

	if messages == nil {
		messages, err = h.chat.ListMessages(conversationID, userID, cursor, pageLimit)
		if err != nil {
			return serviceError(c, err)
		}
		if cursor == 0 && len(messages) > 0 {
			_ = h.chatCache.SetMessagePage(conversationID, messages)
		}
	}

	// Messages are chronological; trim from the front so the page keeps the
	// newest entries.
	fetched := len(messages)
	if fetched > limit {
		messages = messages[fetched-limit:]
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}

	result := fiber.Map{
		"messages": responses,
		"count":    len(responses),
	}
	if len(messages) > 0 && (fetched > limit || fetched == pageLimit) {
		// Oldest message in this page; pass it back as cursor to load older
		// history. Omitted when this page exhausted the history.
		result["next_cursor"] = messages[0].ID
	}

	return c.JSON(result)
}

type sendMessageInput struct {
	ClientID string `json:"client_id"`
	Content  string `json:"content"`
}

// SendMessage appends a message through the durable path and fans it out to
// the conversation room.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	conversationID, ok := validation.ParseUintParam(c.Params("id"))
	if !ok {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	var input sendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.chat.SendMessage(conversationID, userID, input.ClientID, input.Content)
	if err != nil {
		return serviceError(c, err)
	}

	_ = h.chatCache.InvalidateConversation(conversationID)

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// MarkRead acknowledges every unread message in the conversation for the
// caller and returns how many were newly marked.
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	conversationID, ok := validation.ParseUintParam(c.Params("id"))
	if !ok {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	marked, err := h.chat.MarkRead(conversationID, userID)
	if err != nil {
		return serviceError(c, err)
	}

	_ = h.chatCache.InvalidateConversation(conversationID)

	return c.JSON(fiber.Map{
		"marked": marked,
	})
}

// serviceError translates the service error taxonomy into HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	var validationErr *service.ValidationError
	var authorizationErr *service.AuthorizationError
	var notFoundErr *service.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		return httpx.BadRequest(c, "invalid_request", validationErr.Error())
	case errors.As(err, &authorizationErr):
		return httpx.Forbidden(c, "not_participant", "Not a participant of this conversation")
	case errors.As(err, &notFoundErr):
		return httpx.NotFound(c, "not_found", notFoundErr.Error())
	default:
		return httpx.Internal(c, "store_error")
	}
}
