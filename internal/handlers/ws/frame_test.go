package ws

import (
	"encoding/json"
	"testing"
)

func TestDeserialize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
		checkFn   func(Frame) bool
	}{
		{
			name:  "Chat frame",
			input: `{"type":"chat","payload":{"conversation_id":3,"client_id":"abc","content":"hello"}}`,
			checkFn: func(f Frame) bool {
				chat, ok := f.(*ChatFrame)
				return ok && chat.ConversationID == 3 && chat.ClientID == "abc" && chat.Content == "hello"
			},
		},
		{
			name:  "Join frame",
			input: `{"type":"join","payload":{"conversation_id":9}}`,
			checkFn: func(f Frame) bool {
				join, ok := f.(*JoinFrame)
				return ok && join.ConversationID == 9
			},
		},
		{
			name:  "Leave frame",
			input: `{"type":"leave","payload":{"conversation_id":9}}`,
			checkFn: func(f Frame) bool {
				_, ok := f.(*LeaveFrame)
				return ok
			},
		},
		{
			name:  "Typing frame",
			input: `{"type":"typing","payload":{"conversation_id":4,"started":true}}`,
			checkFn: func(f Frame) bool {
				typing, ok := f.(*TypingFrame)
				return ok && typing.ConversationID == 4 && typing.Started
			},
		},
		{
			name:  "Ping frame without payload",
			input: `{"type":"ping"}`,
			checkFn: func(f Frame) bool {
				_, ok := f.(*PingFrame)
				return ok
			},
		},
		{
			name:      "Unknown type",
			input:     `{"type":"teleport","payload":{}}`,
			shouldErr: true,
		},
		{
			name:      "Malformed JSON",
			input:     `{"type":"chat"`,
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Deserialize([]byte(tt.input))
			if (err != nil) != tt.shouldErr {
				t.Fatalf("Deserialize error = %v, wantErr %v", err, tt.shouldErr)
			}
			if !tt.shouldErr && tt.checkFn != nil && !tt.checkFn(frame) {
				t.Errorf("Deserialize produced unexpected frame: %+v", frame)
			}
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	data, err := Serialize("ack", AckPayload{ClientID: "abc", MessageID: 42})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var wrapper SerializedFrame
	if err := json.Unmarshal(data, &wrapper); err != nil {
		t.Fatalf("unmarshaling wrapper: %v", err)
	}
	if wrapper.Type != "ack" {
		t.Errorf("wrapper type = %q, want %q", wrapper.Type, "ack")
	}

	var ack AckPayload
	if err := json.Unmarshal(wrapper.Payload, &ack); err != nil {
		t.Fatalf("unmarshaling payload: %v", err)
	}
	if ack.ClientID != "abc" || ack.MessageID != 42 {
		t.Errorf("ack payload = %+v", ack)
	}
}

func TestTypeRegistryComplete(t *testing.T) {
	for _, frameType := range []string{"join", "leave", "chat", "typing", "ping"} {
		if _, ok := typeRegistry[frameType]; !ok {
			t.Errorf("frame type %q not registered", frameType)
		}
	}
}
