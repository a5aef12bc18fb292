package petcatalog

import "context"

// Pet is a schedulable entity a reminder may refer to.
type Pet struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species,omitempty"`
}

// Reader is the read-only catalog lookup consumed by the dialogue flow.
type Reader interface {
	// GetSchedulableEntities returns the user's pets. An empty slice is a
	// valid result; reminders can exist without an entity.
	GetSchedulableEntities(ctx context.Context, userID string) ([]Pet, error)
}
