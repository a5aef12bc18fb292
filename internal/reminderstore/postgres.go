package reminderstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pawpal/internal/reminder"
)

// PostgresStore is the authoritative reminder store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("reminder store not initialized")
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reminders (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    due_at TIMESTAMPTZ NOT NULL,
    recurrence TEXT NOT NULL,
    kind TEXT NOT NULL,
    pet_id TEXT,
    status TEXT NOT NULL,
    source TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders (status, due_at);`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders (user_id, created_at DESC);`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Create writes a new reminder record.
func (s *PostgresStore) Create(ctx context.Context, r reminder.Reminder) (string, error) {
	if s == nil || s.pool == nil {
		return "", fmt.Errorf("reminder store not initialized")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = reminder.StatusPending
	}
	if err := r.Validate(); err != nil {
		return "", err
	}

	var petID any
	if r.PetID != "" {
		petID = r.PetID
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO reminders (id, user_id, title, description, due_at, recurrence, kind, pet_id, status, source, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, r.ID, r.UserID, r.Title, r.Description, r.DueAt.UTC(), r.Recurrence, r.Kind, petID, r.Status, r.Source, r.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert reminder: %w", err)
	}
	return r.ID, nil
}

// ListDue returns pending reminders due at or before the given instant.
func (s *PostgresStore) ListDue(ctx context.Context, before time.Time) ([]reminder.Reminder, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, title, description, due_at, recurrence, kind, COALESCE(pet_id, ''), status, source, created_at
FROM reminders
WHERE status = $1 AND due_at <= $2
ORDER BY due_at
`, reminder.StatusPending, before.UTC())
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}
	defer rows.Close()

	var out []reminder.Reminder
	for rows.Next() {
		var r reminder.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.DueAt,
			&r.Recurrence, &r.Kind, &r.PetID, &r.Status, &r.Source, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		r.DueAt = r.DueAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a reminder to the given status.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status reminder.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reminders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update reminder status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update reminder %s: %w", id, ErrReminderNotFound)
	}
	return nil
}
