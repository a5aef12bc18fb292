package petcatalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresReader reads the pet catalog from the shared product database.
// The pets table is owned by the profile service; this reader never writes.
type PostgresReader struct {
	pool *pgxpool.Pool
}

// NewPostgresReader constructs a Postgres-backed catalog reader.
func NewPostgresReader(pool *pgxpool.Pool) *PostgresReader {
	return &PostgresReader{pool: pool}
}

func (r *PostgresReader) GetSchedulableEntities(ctx context.Context, userID string) ([]Pet, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("pet catalog not initialized")
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, name, COALESCE(species, '')
FROM pets
WHERE user_id = $1
ORDER BY name
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query pets: %w", err)
	}
	defer rows.Close()

	var pets []Pet
	for rows.Next() {
		var p Pet
		if err := rows.Scan(&p.ID, &p.Name, &p.Species); err != nil {
			return nil, fmt.Errorf("scan pet: %w", err)
		}
		pets = append(pets, p)
	}
	return pets, rows.Err()
}
