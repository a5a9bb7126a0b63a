package hub

import (
	"testing"
	"time"
)

// fakeConn captures frames the write pump emits.
type fakeConn struct {
	writes chan []byte
	closed chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		writes: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.writes <- data
	return nil
}

func (c *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (c *fakeConn) Close() error {
	close(c.closed)
	return nil
}

func (c *fakeConn) receive(t *testing.T) []byte {
	t.Helper()
	select {
	case data := <-c.writes:
		return data
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for frame")
		return nil
	}
}

func (c *fakeConn) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case data := <-c.writes:
		t.Fatalf("unexpected frame delivered: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func startSession(t *testing.T, h *Hub, userID uint) (*Session, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	s := NewSession(userID, conn)
	h.Register(s)
	go s.WritePump()
	t.Cleanup(s.Close)
	return s, conn
}

func TestBroadcastToRoom(t *testing.T) {
	h := NewHub()

	s1, conn1 := startSession(t, h, 1)
	s2, conn2 := startSession(t, h, 2)
	_, conn3 := startSession(t, h, 3)

	room := ConversationRoom(7)
	h.Join(room, s1)
	h.Join(room, s2)

	payload := []byte(`{"type":"message-created","payload":{"content":"test"}}`)
	delivered := h.Broadcast(room, payload, 1)
	if delivered != 1 {
		t.Errorf("Broadcast delivered to %d sessions, want 1", delivered)
	}

	got := conn2.receive(t)
	if string(got) != string(payload) {
		t.Errorf("delivered payload = %s, want %s", got, payload)
	}

	// The originator is excluded and the unjoined user receives nothing.
	conn1.expectNothing(t)
	conn3.expectNothing(t)
}

func TestRegisterJoinsUserRoom(t *testing.T) {
	h := NewHub()
	_, conn := startSession(t, h, 5)

	payload := []byte(`{"type":"conversation-updated"}`)
	if delivered := h.Broadcast(UserRoom(5), payload, 0); delivered != 1 {
		t.Fatalf("Broadcast to user room delivered %d, want 1", delivered)
	}
	conn.receive(t)
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := NewHub()
	s, conn := startSession(t, h, 1)

	room := ConversationRoom(3)
	h.Join(room, s)
	h.Leave(room, s)

	if delivered := h.Broadcast(room, []byte("{}"), 0); delivered != 0 {
		t.Errorf("Broadcast after leave delivered %d, want 0", delivered)
	}
	conn.expectNothing(t)
}

func TestUnregisterLeavesAllRooms(t *testing.T) {
	h := NewHub()
	s, _ := startSession(t, h, 1)

	roomA := ConversationRoom(1)
	roomB := ConversationRoom(2)
	h.Join(roomA, s)
	h.Join(roomB, s)

	h.Unregister(s)

	for _, room := range []string{roomA, roomB, UserRoom(1)} {
		if delivered := h.Broadcast(room, []byte("{}"), 0); delivered != 0 {
			t.Errorf("room %s still delivered %d after unregister", room, delivered)
		}
	}
	if h.IsOnline(1) {
		t.Errorf("user still online after unregister")
	}
}

func TestJoinUnknownSessionIgnored(t *testing.T) {
	h := NewHub()
	s := NewSession(1, newFakeConn())

	// Never registered; a join racing a disconnect must not track membership.
	h.Join(ConversationRoom(1), s)
	if delivered := h.Broadcast(ConversationRoom(1), []byte("{}"), 0); delivered != 0 {
		t.Errorf("unregistered session received broadcast")
	}
}

func TestInRoom(t *testing.T) {
	h := NewHub()
	s, _ := startSession(t, h, 1)

	room := ConversationRoom(9)
	if h.InRoom(room, 1) {
		t.Errorf("InRoom true before join")
	}
	h.Join(room, s)
	if !h.InRoom(room, 1) {
		t.Errorf("InRoom false after join")
	}
}

func TestMultipleSessionsPerUser(t *testing.T) {
	h := NewHub()
	s1, conn1 := startSession(t, h, 1)
	s2, conn2 := startSession(t, h, 1)

	room := ConversationRoom(4)
	h.Join(room, s1)
	h.Join(room, s2)

	if delivered := h.Broadcast(room, []byte("{}"), 0); delivered != 2 {
		t.Errorf("Broadcast delivered %d, want both sessions of the user", delivered)
	}
	conn1.receive(t)
	conn2.receive(t)

	if h.Count() != 2 {
		t.Errorf("Count = %d, want 2", h.Count())
	}
}
