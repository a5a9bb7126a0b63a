package cache

import (
	"testing"
	"time"

	"github.com/rentnest/rentchat-backend/internal/models"
	"github.com/rentnest/rentchat-backend/internal/testutil"
)

// memStore is an in-memory Store; TTLs are ignored.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(key string) ([]byte, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (s *memStore) Set(key string, value []byte, ttl time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func TestChatCacheRoundTrip(t *testing.T) {
	h := testutil.NewTestHelper(t)
	cc := NewChatCache(newMemStore())

	messages := []models.Message{
		*h.CreateTestMessage(1, 5, 1, "is the flat still available?"),
		*h.CreateTestMessage(2, 5, 2, "it is, when would you like to view?"),
	}
	if err := cc.SetMessagePage(5, messages); err != nil {
		t.Fatalf("SetMessagePage: %v", err)
	}

	got, ok := cc.GetMessagePage(5)
	if !ok {
		t.Fatalf("GetMessagePage missed a freshly cached page")
	}
	h.AssertEqual(len(got), 2, "cached page length")
	h.AssertEqual(got[0].Content, messages[0].Content, "cached content")
	h.AssertEqual(got[1].SenderID, uint(2), "cached sender")

	if _, ok := cc.GetMessagePage(6); ok {
		t.Errorf("GetMessagePage hit for a conversation never cached")
	}
}

func TestChatCacheInvalidation(t *testing.T) {
	h := testutil.NewTestHelper(t)
	cc := NewChatCache(newMemStore())

	pageA := []models.Message{*h.CreateTestMessage(1, 1, 1, "thread A")}
	pageB := []models.Message{*h.CreateTestMessage(2, 2, 1, "thread B")}
	if err := cc.SetMessagePage(1, pageA); err != nil {
		t.Fatalf("SetMessagePage A: %v", err)
	}
	if err := cc.SetMessagePage(2, pageB); err != nil {
		t.Fatalf("SetMessagePage B: %v", err)
	}

	if err := cc.InvalidateConversation(1); err != nil {
		t.Fatalf("InvalidateConversation: %v", err)
	}

	if _, ok := cc.GetMessagePage(1); ok {
		t.Errorf("invalidated page still served")
	}
	if _, ok := cc.GetMessagePage(2); !ok {
		t.Errorf("invalidation of one conversation dropped another's page")
	}
}

func TestChatCacheDisabled(t *testing.T) {
	h := testutil.NewTestHelper(t)
	page := []models.Message{*h.CreateTestMessage(1, 1, 1, "no cache in sight")}

	for name, cc := range map[string]*ChatCache{
		"nil receiver": nil,
		"nil store":    NewChatCache(nil),
	} {
		if err := cc.SetMessagePage(1, page); err != nil {
			t.Errorf("%s: SetMessagePage = %v, want nil", name, err)
		}
		if _, ok := cc.GetMessagePage(1); ok {
			t.Errorf("%s: GetMessagePage reported a hit", name)
		}
		if err := cc.InvalidateConversation(1); err != nil {
			t.Errorf("%s: InvalidateConversation = %v, want nil", name, err)
		}
	}
}
