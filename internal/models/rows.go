package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a row ready for insertion into the workouts table.
// RawInput keeps the verbatim utterance for audit and debugging.
type WorkoutRow struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	Date      time.Time `json:"date"`
	Username  string    `json:"username"`
	RawInput  string    `json:"raw_input"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// ExerciseRow is a row for the exercises table. Position preserves the
// order exercises were mentioned in the utterance.
type ExerciseRow struct {
	ID           int64     `json:"id"`
	WorkoutID    uuid.UUID `json:"workout_id"`
	Name         string    `json:"name"`
	ActivityType string    `json:"activity_type"`
	Notes        string    `json:"notes,omitempty"`
	Position     int       `json:"position"`
}

// SetRow is a row for the exercise_sets table. Set numbers are 1-based and
// strictly increasing within an exercise.
type SetRow struct {
	ID         int64 `json:"id"`
	ExerciseID int64 `json:"exercise_id"`
	SetNumber  int   `json:"set_number"`
}

// MetricRow is a row for the exercise_metrics table. Rows are only created
// for metrics with a concrete value; null metrics are dropped upstream.
type MetricRow struct {
	SetID      int64   `json:"set_id"`
	MetricType string  `json:"metric_type"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
}

// EntryTree groups the rows of one workout entry prior to insertion, so
// storage can link children to generated parent IDs in one transaction.
type EntryTree struct {
	Workout   WorkoutRow
	Exercises []ExerciseTree
}

// ExerciseTree is an exercise row with its sets.
type ExerciseTree struct {
	Row  ExerciseRow
	Sets []SetTree
}

// SetTree is a set row with its metrics.
type SetTree struct {
	Row     SetRow
	Metrics []MetricRow
}
