package draftstore

import (
	"context"
	"sync"

	"pawpal/internal/reminder"
)

// MemoryStore is a lightweight Store implementation for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]reminder.Draft
}

// NewMemoryStore constructs an in-memory draft store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]reminder.Draft)}
}

func (s *MemoryStore) Load(_ context.Context, conversationID string) (reminder.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[conversationID]
	if !ok {
		return reminder.Draft{}, ErrDraftNotFound
	}
	return draft, nil
}

func (s *MemoryStore) Save(_ context.Context, draft reminder.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ConversationID] = draft
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, conversationID)
	return nil
}
