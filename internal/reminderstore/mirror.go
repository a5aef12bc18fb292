package reminderstore

import (
	"context"
	"time"

	"pawpal/internal/logging"
	"pawpal/internal/reminder"
)

// Mirrorer receives a best-effort copy of every created record.
type Mirrorer interface {
	Mirror(ctx context.Context, recordID string, r reminder.Reminder) error
}

// MirroredStore writes to the authoritative primary store, then mirrors the
// record on a best-effort basis. A mirror failure is logged and never fails
// the logical operation.
type MirroredStore struct {
	primary Store
	mirror  Mirrorer
	logger  logging.Logger
}

// NewMirroredStore wraps primary with a best-effort mirror.
func NewMirroredStore(primary Store, mirror Mirrorer, logger logging.Logger) *MirroredStore {
	return &MirroredStore{
		primary: primary,
		mirror:  mirror,
		logger:  logging.OrNop(logger),
	}
}

func (s *MirroredStore) Create(ctx context.Context, r reminder.Reminder) (string, error) {
	id, err := s.primary.Create(ctx, r)
	if err != nil {
		return "", err
	}
	if s.mirror != nil {
		if mirrorErr := s.mirror.Mirror(ctx, id, r); mirrorErr != nil {
			s.logger.Warn("legacy mirror write failed for reminder %s: %v", id, mirrorErr)
		}
	}
	return id, nil
}

func (s *MirroredStore) ListDue(ctx context.Context, before time.Time) ([]reminder.Reminder, error) {
	return s.primary.ListDue(ctx, before)
}

func (s *MirroredStore) UpdateStatus(ctx context.Context, id string, status reminder.Status) error {
	return s.primary.UpdateStatus(ctx, id, status)
}
