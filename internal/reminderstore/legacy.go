package reminderstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pawpal/internal/reminder"
)

// The legacy delivery path still reads task files in the old scheduler's
// job format. New records are mirrored into that format so downstream
// consumers keep working until they migrate to the reminders table.

// legacyTask is the old scheduler's on-disk record shape.
type legacyTask struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	RunAt     time.Time `json:"run_at"`
	Repeat    string    `json:"repeat"`
	Owner     string    `json:"owner"`
	Subject   string    `json:"subject,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// legacyCategories maps every reminder kind onto the old category set.
// Explicit per-kind entries; an unmapped kind is an error, never a silent
// truncation.
var legacyCategories = map[reminder.Kind]string{
	reminder.KindMedication:  "meds",
	reminder.KindAppointment: "vet",
	reminder.KindGrooming:    "care",
	reminder.KindFeeding:     "food",
	reminder.KindTraining:    "activity",
	reminder.KindExercise:    "activity",
	reminder.KindPlay:        "activity",
	reminder.KindOther:       "misc",
}

// legacyRepeats maps recurrence onto the old repeat vocabulary.
var legacyRepeats = map[reminder.Recurrence]string{
	reminder.RecurrenceOnce:    "none",
	reminder.RecurrenceDaily:   "day",
	reminder.RecurrenceWeekly:  "week",
	reminder.RecurrenceMonthly: "month",
}

// LegacyFileStore mirrors reminder records into the legacy task directory.
type LegacyFileStore struct {
	baseDir string
}

// NewLegacyFileStore creates the mirror store rooted at baseDir.
func NewLegacyFileStore(baseDir string) (*LegacyFileStore, error) {
	if strings.HasPrefix(baseDir, "~/") {
		home, _ := os.UserHomeDir()
		baseDir = filepath.Join(home, baseDir[2:])
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create legacy task dir: %w", err)
	}
	return &LegacyFileStore{baseDir: baseDir}, nil
}

// Mirror writes the legacy-format copy of a reminder. recordID is the
// authoritative store's ID so the two records stay correlated.
func (s *LegacyFileStore) Mirror(_ context.Context, recordID string, r reminder.Reminder) error {
	category, ok := legacyCategories[r.Kind]
	if !ok {
		return fmt.Errorf("no legacy category for kind %q", r.Kind)
	}
	repeat, ok := legacyRepeats[r.Recurrence]
	if !ok {
		return fmt.Errorf("no legacy repeat for recurrence %q", r.Recurrence)
	}

	task := legacyTask{
		ID:        recordID,
		Name:      r.Title,
		Category:  category,
		RunAt:     r.DueAt.UTC(),
		Repeat:    repeat,
		Owner:     r.UserID,
		Subject:   r.PetID,
		Status:    "pending",
		CreatedAt: r.CreatedAt,
	}
	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("encode legacy task: %w", err)
	}
	path := filepath.Join(s.baseDir, fmt.Sprintf("%s.json", recordID))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write legacy task: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit legacy task: %w", err)
	}
	return nil
}
