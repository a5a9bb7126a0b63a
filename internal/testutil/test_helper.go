package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rentnest/rentchat-backend/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestConversation creates a two-party conversation with default values
func (h *TestHelper) CreateTestConversation(id uint, userIDs []uint, listingID *uint) *models.Conversation {
	if id == 0 {
		id = 1
	}
	if len(userIDs) == 0 {
		userIDs = []uint{1, 2}
	}

	conv := &models.Conversation{
		ID:             id,
		ParticipantKey: models.ParticipantKey(userIDs, listingID),
		ListingID:      listingID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	for i, uid := range userIDs {
		conv.Participants = append(conv.Participants, models.ConversationParticipant{
			ConversationID: id,
			UserID:         uid,
			Position:       i,
		})
	}
	return conv
}

// CreateTestMessage creates a test message with default values. The sender's
// own read row is present, as the store guarantees.
func (h *TestHelper) CreateTestMessage(id, conversationID, senderID uint, content string) *models.Message {
	if id == 0 {
		id = 1
	}
	if conversationID == 0 {
		conversationID = 1
	}
	if senderID == 0 {
		senderID = 1
	}
	if content == "" {
		content = "Test message"
	}

	return &models.Message{
		ID:             id,
		ClientID:       fmt.Sprintf("client-%d", id),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    models.TextMessage,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Reads: []models.MessageRead{
			{MessageID: id, UserID: senderID, CreatedAt: time.Now()},
		},
	}
}

// SetupTestEnv sets up required environment variables for testing
func (h *TestHelper) SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("MAX_MESSAGE_LENGTH", "4000")
}

// TeardownTestEnv cleans up environment variables after testing
func (h *TestHelper) TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("MAX_MESSAGE_LENGTH")
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}
