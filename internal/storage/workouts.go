package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/replog/internal/models"
)

// InsertEntry inserts one workout entry and all of its children in a single
// transaction. Child rows are linked through the IDs PostgreSQL generates
// for their parents. Returns the workout ID.
func (db *DB) InsertEntry(ctx context.Context, tree models.EntryTree) (uuid.UUID, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	w := tree.Workout
	_, err = tx.Exec(ctx,
		`INSERT INTO workouts (id, user_id, date, username, raw_input)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.UserID, w.Date, w.Username, w.RawInput)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting workout: %w", err)
	}

	for _, ex := range tree.Exercises {
		var exerciseID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO exercises (workout_id, name, activity_type, notes, position)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			w.ID, ex.Row.Name, ex.Row.ActivityType, ex.Row.Notes, ex.Row.Position).Scan(&exerciseID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("inserting exercise %q: %w", ex.Row.Name, err)
		}

		for _, set := range ex.Sets {
			var setID int64
			err := tx.QueryRow(ctx,
				`INSERT INTO exercise_sets (exercise_id, set_number)
				 VALUES ($1, $2) RETURNING id`,
				exerciseID, set.Row.SetNumber).Scan(&setID)
			if err != nil {
				return uuid.Nil, fmt.Errorf("inserting set %d of %q: %w", set.Row.SetNumber, ex.Row.Name, err)
			}

			for _, m := range set.Metrics {
				_, err := tx.Exec(ctx,
					`INSERT INTO exercise_metrics (set_id, metric_type, value, unit)
					 VALUES ($1, $2, $3, $4)`,
					setID, m.MetricType, m.Value, m.Unit)
				if err != nil {
					return uuid.Nil, fmt.Errorf("inserting %s metric: %w", m.MetricType, err)
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing entry: %w", err)
	}
	return w.ID, nil
}

// QueryWorkouts retrieves workouts in a date range, newest first.
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, date, username, raw_input, created_at
		 FROM workouts
		 WHERE date >= $1 AND date < $2 AND user_id = $3
		 ORDER BY date DESC, created_at DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Date, &w.Username, &w.RawInput, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// WorkoutDetail is a workout with its full exercise/set/metric tree.
type WorkoutDetail struct {
	models.WorkoutRow
	Exercises []ExerciseDetail `json:"exercises"`
}

// ExerciseDetail is an exercise with its sets.
type ExerciseDetail struct {
	models.ExerciseRow
	Sets []SetDetail `json:"sets"`
}

// SetDetail is a set with its metrics.
type SetDetail struct {
	models.SetRow
	Metrics []models.MetricRow `json:"metrics"`
}

// GetWorkout retrieves a single workout by ID with all associated data.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*WorkoutDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, date, username, raw_input, created_at
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	var w models.WorkoutRow
	if err := row.Scan(&w.ID, &w.UserID, &w.Date, &w.Username, &w.RawInput, &w.CreatedAt); err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	detail := &WorkoutDetail{WorkoutRow: w}

	exRows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, name, activity_type, notes, position
		 FROM exercises
		 WHERE workout_id = $1
		 ORDER BY position ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var e models.ExerciseRow
		if err := exRows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.ActivityType, &e.Notes, &e.Position); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		detail.Exercises = append(detail.Exercises, ExerciseDetail{ExerciseRow: e})
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	for i := range detail.Exercises {
		sets, err := db.querySets(ctx, detail.Exercises[i].ID)
		if err != nil {
			return nil, err
		}
		detail.Exercises[i].Sets = sets
	}

	return detail, nil
}

func (db *DB) querySets(ctx context.Context, exerciseID int64) ([]SetDetail, error) {
	setRows, err := db.Pool.Query(ctx,
		`SELECT id, exercise_id, set_number
		 FROM exercise_sets
		 WHERE exercise_id = $1
		 ORDER BY set_number ASC`,
		exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer setRows.Close()

	var sets []SetDetail
	for setRows.Next() {
		var s models.SetRow
		if err := setRows.Scan(&s.ID, &s.ExerciseID, &s.SetNumber); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, SetDetail{SetRow: s})
	}
	if err := setRows.Err(); err != nil {
		return nil, err
	}

	for i := range sets {
		mRows, err := db.Pool.Query(ctx,
			`SELECT set_id, metric_type, value, unit
			 FROM exercise_metrics
			 WHERE set_id = $1`,
			sets[i].ID)
		if err != nil {
			return nil, fmt.Errorf("querying metrics: %w", err)
		}
		for mRows.Next() {
			var m models.MetricRow
			if err := mRows.Scan(&m.SetID, &m.MetricType, &m.Value, &m.Unit); err != nil {
				mRows.Close()
				return nil, fmt.Errorf("scanning metric: %w", err)
			}
			sets[i].Metrics = append(sets[i].Metrics, m)
		}
		err = mRows.Err()
		mRows.Close()
		if err != nil {
			return nil, err
		}
	}

	return sets, nil
}

// DeleteLatestExercise removes the most recently logged exercise for a user
// and returns its name. Sets and metrics go with it via ON DELETE CASCADE.
// Corrections arrive as new utterances ("delete my latest exercise"), never
// as mutations of a retained object.
func (db *DB) DeleteLatestExercise(ctx context.Context, userID int) (string, error) {
	var name string
	err := db.Pool.QueryRow(ctx,
		`DELETE FROM exercises
		 WHERE id = (
			SELECT e.id FROM exercises e
			JOIN workouts w ON w.id = e.workout_id
			WHERE w.user_id = $1
			ORDER BY w.date DESC, w.created_at DESC, e.position DESC
			LIMIT 1
		 )
		 RETURNING name`,
		userID).Scan(&name)
	if err != nil {
		return "", fmt.Errorf("deleting latest exercise: %w", err)
	}
	return name, nil
}
