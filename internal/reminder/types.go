package reminder

import (
	"fmt"
	"time"
)

// Kind classifies what a reminder is for.
type Kind string

const (
	KindMedication  Kind = "medication"
	KindAppointment Kind = "appointment"
	KindGrooming    Kind = "grooming"
	KindFeeding     Kind = "feeding"
	KindTraining    Kind = "training"
	KindExercise    Kind = "exercise"
	KindPlay        Kind = "play"
	KindOther       Kind = "other"
)

// validKinds enumerates all accepted kind values.
var validKinds = map[Kind]bool{
	KindMedication:  true,
	KindAppointment: true,
	KindGrooming:    true,
	KindFeeding:     true,
	KindTraining:    true,
	KindExercise:    true,
	KindPlay:        true,
	KindOther:       true,
}

// IsValid returns true if the kind is one of the recognized values.
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// Kinds returns every recognized kind.
func Kinds() []Kind {
	return []Kind{
		KindMedication, KindAppointment, KindGrooming, KindFeeding,
		KindTraining, KindExercise, KindPlay, KindOther,
	}
}

// Recurrence describes how often a reminder repeats.
type Recurrence string

const (
	RecurrenceOnce    Recurrence = "once"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

var validRecurrences = map[Recurrence]bool{
	RecurrenceOnce:    true,
	RecurrenceDaily:   true,
	RecurrenceWeekly:  true,
	RecurrenceMonthly: true,
}

// IsValid returns true if the recurrence is one of the recognized values.
func (r Recurrence) IsValid() bool {
	return validRecurrences[r]
}

// Status is the lifecycle state of a persisted reminder.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// SourceConversational marks records created by the dialogue flow.
const SourceConversational = "conversational"

// FieldName identifies a required draft slot.
type FieldName string

const (
	FieldTitle  FieldName = "title"
	FieldDueAt  FieldName = "due_at"
	FieldEntity FieldName = "entity"
)

// EntityRef points a reminder at a pet, or at every pet the user has.
// A nil *EntityRef means no entity was mentioned.
type EntityRef struct {
	ID  string `json:"id,omitempty"`
	All bool   `json:"all,omitempty"`
}

// Reminder is the durable record created once a draft completes.
type Reminder struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// DueAt is always an absolute UTC instant.
	DueAt      time.Time  `json:"due_at"`
	Recurrence Recurrence `json:"recurrence"`
	Kind       Kind       `json:"kind"`
	PetID      string     `json:"pet_id,omitempty"`
	Status     Status     `json:"status"`
	Source     string     `json:"source"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Validate checks that the reminder has the minimum required fields.
func (r *Reminder) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("reminder: user_id is required")
	}
	if r.Title == "" {
		return fmt.Errorf("reminder: title is required")
	}
	if r.DueAt.IsZero() {
		return fmt.Errorf("reminder: due_at is required")
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("reminder: invalid kind %q", r.Kind)
	}
	if !r.Recurrence.IsValid() {
		return fmt.Errorf("reminder: invalid recurrence %q", r.Recurrence)
	}
	return nil
}

// BroadcastResult collects per-pet outcomes of a fan-out creation. Succeeded
// and Failed hold pet display names in catalog order.
type BroadcastResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// Partial reports whether some but not all creations failed.
func (b BroadcastResult) Partial() bool {
	return len(b.Failed) > 0 && len(b.Succeeded) > 0
}
