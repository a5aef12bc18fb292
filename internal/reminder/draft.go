package reminder

import (
	"encoding/json"
	"fmt"
	"time"
)

// State tracks where a draft sits in the turn pipeline.
type State string

const (
	StateCollecting State = "collecting"
	StateValidating State = "validating"
	StateResolving  State = "resolving"
	StateCreating   State = "creating"
	StateComplete   State = "complete"
)

// Draft accumulates partially-known reminder fields across conversation
// turns. Nil pointer fields mean "not yet known", never a guess. Drafts are
// values: Merge returns a new draft and never mutates its input.
type Draft struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`

	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	// DueAt is always an absolute UTC instant, never a naive local value.
	DueAt             *time.Time `json:"due_at,omitempty"`
	Kind              *Kind      `json:"kind,omitempty"`
	Entity            *EntityRef `json:"entity,omitempty"`
	EntityDisplayName string     `json:"entity_display_name,omitempty"`
	Recurrence        Recurrence `json:"recurrence"`

	// MissingFields is recomputed by Merge every turn, never edited by hand.
	MissingFields []FieldName `json:"missing_fields"`
	// ValidationErrors is recomputed by Validate only.
	ValidationErrors []string `json:"validation_errors,omitempty"`

	Completed       bool   `json:"completed"`
	CreatedRecordID string `json:"created_record_id,omitempty"`

	State     State     `json:"state"`
	Turn      int       `json:"turn"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDraft starts an empty draft for a conversation.
func NewDraft(userID, conversationID string) Draft {
	return Draft{
		ConversationID: conversationID,
		UserID:         userID,
		Recurrence:     RecurrenceOnce,
		MissingFields:  []FieldName{FieldTitle, FieldDueAt},
		State:          StateCollecting,
	}
}

// ExtractedFields is one turn's candidate slot values as returned by the
// field extractor. Every field is independently optional.
type ExtractedFields struct {
	Title             *string
	Description       *string
	DueAt             *time.Time
	Kind              *Kind
	Entity            *EntityRef
	EntityDisplayName string
	Recurrence        *Recurrence
	Confidence        string
}

// Empty reports whether the turn produced no usable fields at all.
func (f ExtractedFields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.DueAt == nil &&
		f.Kind == nil && f.Entity == nil && f.Recurrence == nil
}

// Merge folds one turn's extracted fields into a draft. Non-nil extracted
// fields overwrite; nil fields leave the prior value untouched. The missing
// set is recomputed against the catalog size: entity is only required when
// the user has more than one pet and none was chosen.
func Merge(d Draft, f ExtractedFields, catalogSize int) Draft {
	if f.Title != nil {
		d.Title = f.Title
	}
	if f.Description != nil {
		d.Description = f.Description
	}
	if f.DueAt != nil {
		due := f.DueAt.UTC()
		d.DueAt = &due
	}
	if f.Kind != nil {
		d.Kind = f.Kind
	}
	if f.Entity != nil {
		ref := *f.Entity
		d.Entity = &ref
		d.EntityDisplayName = f.EntityDisplayName
	}
	if f.Recurrence != nil {
		d.Recurrence = *f.Recurrence
	}

	missing := make([]FieldName, 0, 3)
	if d.Title == nil {
		missing = append(missing, FieldTitle)
	}
	if d.DueAt == nil {
		missing = append(missing, FieldDueAt)
	}
	if catalogSize > 1 && d.Entity == nil {
		missing = append(missing, FieldEntity)
	}
	d.MissingFields = missing

	if len(missing) == 0 {
		d.State = StateValidating
	} else {
		d.State = StateCollecting
	}
	return d
}

// Missing reports whether the given field is still unfilled.
func (d Draft) Missing(field FieldName) bool {
	for _, f := range d.MissingFields {
		if f == field {
			return true
		}
	}
	return false
}

// KindOrDefault returns the chosen kind, defaulting silently at completion
// time.
func (d Draft) KindOrDefault() Kind {
	if d.Kind != nil {
		return *d.Kind
	}
	return KindOther
}

// RecurrenceOrDefault returns the chosen recurrence, defaulting to once.
func (d Draft) RecurrenceOrDefault() Recurrence {
	if d.Recurrence.IsValid() {
		return d.Recurrence
	}
	return RecurrenceOnce
}

// EncodeDraft serializes a draft as the opaque continuation state handed
// back to the caller. Timestamps serialize as RFC 3339 UTC.
func EncodeDraft(d Draft) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return data, nil
}

// DecodeDraft restores a draft from continuation state.
func DecodeDraft(data []byte) (Draft, error) {
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}
