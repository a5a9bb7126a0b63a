package hub

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 128
)

// Conn is the subset of *websocket.Conn the hub writes through. Tests
// substitute an in-memory implementation.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Session is one live connection for one authenticated user. All outbound
// writes go through the send channel so a single goroutine owns the socket.
type Session struct {
	ID     string
	UserID uint

	conn Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewSession(userID uint, conn Conn) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Send enqueues a payload, best-effort. A full buffer means the client is not
// keeping up; the frame is dropped rather than blocking the sender, and the
// client recovers via the catch-up fetch on reconnect.
func (s *Session) Send(payload []byte) bool {
	select {
	case <-s.done:
		return false
	case s.send <- payload:
		return true
	default:
		log.Printf("Dropping frame for user %d: send buffer full", s.UserID)
		return false
	}
}

// Close stops the write pump and closes the socket. Safe to call more than
// once.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// WritePump drains the send channel onto the socket and keeps the connection
// alive with periodic pings. It must be the only writer to the connection.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case payload := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("Error writing to user %d: %v", s.UserID, err)
				s.Close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				log.Printf("Ping failed for user %d: %v", s.UserID, err)
				s.Close()
				return
			}
		}
	}
}
