package petcatalog

import "context"

// StaticReader serves a fixed catalog. Used by tests and local development.
type StaticReader struct {
	Pets map[string][]Pet // userID → pets
}

func (r *StaticReader) GetSchedulableEntities(_ context.Context, userID string) ([]Pet, error) {
	return r.Pets[userID], nil
}
