package hub

import (
	"fmt"
	"log"
	"sync"
)

// Hub tracks live sessions and their room memberships and fans events out to
// rooms. Membership is process-local and never persisted: a restart empties
// every room and clients rejoin on reconnect. Delivery is best-effort with no
// queuing for absent sessions; the durable message store is the source of
// truth and catch-up runs through the fetch endpoints.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[string]*Session            // session id -> session
	rooms        map[string]map[string]*Session // room key -> session id -> session
	sessionRooms map[string]map[string]struct{} // session id -> joined room keys
}

func NewHub() *Hub {
	return &Hub{
		sessions:     make(map[string]*Session),
		rooms:        make(map[string]map[string]*Session),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// ConversationRoom is the room key for a conversation's live fan-out.
func ConversationRoom(conversationID uint) string {
	return fmt.Sprintf("conv:%d", conversationID)
}

// UserRoom is a user's personal notification channel, joined automatically on
// connect so out-of-conversation events still reach them.
func UserRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// Register tracks a session and joins it to its personal room.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.sessionRooms[s.ID] = make(map[string]struct{})
	h.mu.Unlock()

	h.Join(UserRoom(s.UserID), s)
	log.Printf("User %d connected to hub (session %s)", s.UserID, s.ID)
}

// Unregister removes the session from every room it joined and forgets it.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.ID)
	for roomKey := range h.sessionRooms[s.ID] {
		h.leaveLocked(roomKey, s.ID)
	}
	delete(h.sessionRooms, s.ID)
	count := len(h.sessions)
	h.mu.Unlock()

	log.Printf("User %d disconnected from hub (total: %d)", s.UserID, count)
}

// Join adds the session to a room. Unknown sessions are ignored so a join
// racing a disconnect cannot resurrect membership.
func (h *Hub) Join(roomKey string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.ID]; !ok {
		return
	}
	room := h.rooms[roomKey]
	if room == nil {
		room = make(map[string]*Session)
		h.rooms[roomKey] = room
	}
	room[s.ID] = s
	h.sessionRooms[s.ID][roomKey] = struct{}{}
}

// Leave removes the session from a room.
func (h *Hub) Leave(roomKey string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(roomKey, s.ID)
}

func (h *Hub) leaveLocked(roomKey, sessionID string) {
	room := h.rooms[roomKey]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(h.rooms, roomKey)
	}
	if memberships, ok := h.sessionRooms[sessionID]; ok {
		delete(memberships, roomKey)
	}
}

// Broadcast delivers payload to every session in the room, skipping sessions
// of excludeUserID when non-zero. Returns the number of sessions the payload
// was enqueued for.
func (h *Hub) Broadcast(roomKey string, payload []byte, excludeUserID uint) int {
	h.mu.RLock()
	room := h.rooms[roomKey]
	members := make([]*Session, 0, len(room))
	for _, s := range room {
		if excludeUserID != 0 && s.UserID == excludeUserID {
			continue
		}
		members = append(members, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range members {
		if s.Send(payload) {
			delivered++
		}
	}
	return delivered
}

// InRoom reports whether any session of userID has joined the room.
func (h *Hub) InRoom(roomKey string, userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.rooms[roomKey] {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// IsOnline reports whether the user has at least one live session.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
