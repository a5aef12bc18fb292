package reminderstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pawpal/internal/reminder"
)

// MemoryStore is an in-memory Store for tests. FailPetIDs injects per-pet
// creation failures for broadcast partial-failure scenarios; Err fails every
// create.
type MemoryStore struct {
	mu         sync.Mutex
	records    map[string]reminder.Reminder
	Err        error
	FailPetIDs map[string]bool
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]reminder.Reminder)}
}

func (s *MemoryStore) Create(_ context.Context, r reminder.Reminder) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if s.FailPetIDs[r.PetID] {
		return "", fmt.Errorf("injected failure for pet %s", r.PetID)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = reminder.StatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.records[r.ID] = r
	return r.ID, nil
}

func (s *MemoryStore) ListDue(_ context.Context, before time.Time) ([]reminder.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []reminder.Reminder
	for _, r := range s.records {
		if r.Status == reminder.StatusPending && !r.DueAt.After(before) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, status reminder.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return fmt.Errorf("update reminder %s: %w", id, ErrReminderNotFound)
	}
	r.Status = status
	s.records[id] = r
	return nil
}

// All returns every stored record, for test assertions.
func (s *MemoryStore) All() []reminder.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]reminder.Reminder, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
