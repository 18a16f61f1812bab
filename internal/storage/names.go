package storage

import (
	"context"
	"fmt"
)

// DistinctExerciseNames returns every exercise name the user has logged,
// sorted. The enrichment catalog uses these to normalize new spellings
// against what the user already calls an exercise.
func (db *DB) DistinctExerciseNames(ctx context.Context, userID int) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT e.name
		 FROM exercises e
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE w.user_id = $1
		 ORDER BY e.name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning exercise name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
