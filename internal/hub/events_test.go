package hub

import (
	"encoding/json"
	"testing"
)

func TestEncodeEvent(t *testing.T) {
	payload := TypingPayload{Room: ConversationRoom(3), UserID: 7}
	data, err := EncodeEvent(EventTypingStart, payload)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	var decoded struct {
		Type    string        `json:"type"`
		Payload TypingPayload `json:"payload"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if decoded.Type != EventTypingStart {
		t.Errorf("event type = %q, want %q", decoded.Type, EventTypingStart)
	}
	if decoded.Payload.Room != "conv:3" || decoded.Payload.UserID != 7 {
		t.Errorf("event payload = %+v", decoded.Payload)
	}
}

func TestRoomKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Conversation room", ConversationRoom(12), "conv:12"},
		{"User room", UserRoom(7), "user:7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("room key = %q, want %q", tt.got, tt.expected)
			}
		})
	}
}
