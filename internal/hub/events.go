package hub

import "encoding/json"

// Event types fanned out to rooms. All of them are fire-and-forget signals
// layered over the durable store; none carries an acknowledgement protocol.
const (
	EventMessageCreated      = "message-created"
	EventTypingStart         = "typing-start"
	EventTypingStop          = "typing-stop"
	EventConversationUpdated = "conversation-updated"
)

// Event is the wire envelope for everything the hub emits.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EncodeEvent marshals an event envelope for fan-out.
func EncodeEvent(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Payload: payload})
}

// TypingPayload identifies the room a typing signal belongs to.
type TypingPayload struct {
	Room   string `json:"room"`
	UserID uint   `json:"user_id"`
}
