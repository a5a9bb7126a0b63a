package ws

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/rentnest/rentchat-backend/internal/cache"
	"github.com/rentnest/rentchat-backend/internal/hub"
	"github.com/rentnest/rentchat-backend/internal/service"
)

// FrameContext provides all dependencies needed for frame processing. Every
// reply goes through the session's send channel so the write pump stays the
// only socket writer.
type FrameContext struct {
	UserID  uint
	Session *hub.Session
	Hub     *hub.Hub
	Chat    *service.ChatService
	Cache   *cache.ChatCache
}

// Frame is one client-to-server message on the live channel.
type Frame interface {
	GetType() string
	Process(ctx *FrameContext) error
}

// SerializedFrame is the wire format wrapper.
type SerializedFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorPayload is sent when frame processing fails. ClientID is set when the
// failure belongs to a specific send, so the client can fail exactly that
// message.
type ErrorPayload struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	ClientID string `json:"client_id,omitempty"`
}

// AckPayload confirms a live-channel send after the durable append succeeded.
type AckPayload struct {
	ClientID  string `json:"client_id"`
	MessageID uint   `json:"message_id"`
}

func Serialize(frameType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedFrame{Type: frameType, Payload: raw})
}

func Deserialize(jsonBytes []byte) (Frame, error) {
	var wrapper SerializedFrame
	if err := json.Unmarshal(jsonBytes, &wrapper); err != nil {
		return nil, err
	}

	frameType, ok := typeRegistry[wrapper.Type]
	if !ok {
		return nil, fmt.Errorf("unknown frame type: %s", wrapper.Type)
	}

	frame := reflect.New(frameType).Interface().(Frame)
	if len(wrapper.Payload) > 0 {
		if err := json.Unmarshal(wrapper.Payload, frame); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// SendError pushes an error frame to the session, best-effort.
func SendError(session *hub.Session, code, message, clientID string) {
	payload, err := Serialize("error", ErrorPayload{Error: message, Code: code, ClientID: clientID})
	if err != nil {
		return
	}
	session.Send(payload)
}
