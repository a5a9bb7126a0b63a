package handlers

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/rentnest/rentchat-backend/internal/cache"
	"github.com/rentnest/rentchat-backend/internal/handlers/ws"
	"github.com/rentnest/rentchat-backend/internal/hub"
	"github.com/rentnest/rentchat-backend/internal/service"
)

const pongTimeout = 90 * time.Second

type WebSocketHandler struct {
	chat      *service.ChatService
	hub       *hub.Hub
	chatCache *cache.ChatCache
}

func NewWebSocketHandler(chat *service.ChatService, liveHub *hub.Hub, chatCache *cache.ChatCache) *WebSocketHandler {
	return &WebSocketHandler{
		chat:      chat,
		hub:       liveHub,
		chatCache: chatCache,
	}
}

// HandleWebSocket runs one live-channel session: register with the hub (which
// joins the user's personal room), pump frames both ways, and leave every
// room on disconnect. Room membership is never persisted, so after a
// reconnect the client rejoins and catches up over the fetch endpoints.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)

	session := hub.NewSession(userID, c)
	h.hub.Register(session)
	go session.WritePump()

	defer func() {
		h.hub.Unregister(session)
		session.Close()
	}()

	c.SetReadDeadline(time.Now().Add(pongTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	ctx := &ws.FrameContext{
		UserID:  userID,
		Session: session,
		Hub:     h.hub,
		Chat:    h.chat,
		Cache:   h.chatCache,
	}

	for {
		_, frameBytes, err := c.ReadMessage()
		if err != nil {
			break
		}

		frame, err := ws.Deserialize(frameBytes)
		if err != nil {
			log.Printf("Invalid frame from user %d: %v", userID, err)
			ws.SendError(session, "invalid_frame", "Invalid frame format", "")
			continue
		}

		if err := frame.Process(ctx); err != nil {
			log.Printf("Error processing %s frame from user %d: %v", frame.GetType(), userID, err)
			ws.SendError(session, "processing_failed", "Failed to process frame", "")
		}
	}
}
