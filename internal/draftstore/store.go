package draftstore

import (
	"context"
	"errors"

	"pawpal/internal/reminder"
)

// ErrDraftNotFound is returned when no in-progress draft exists for a
// conversation.
var ErrDraftNotFound = errors.New("draft not found")

// Store persists the per-conversation continuation state between turns.
// One draft per conversation; Save overwrites atomically relative to that
// conversation.
type Store interface {
	Load(ctx context.Context, conversationID string) (reminder.Draft, error)
	Save(ctx context.Context, draft reminder.Draft) error
	Delete(ctx context.Context, conversationID string) error
}
