package logbook

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/replog/internal/models"
	"github.com/meltforce/replog/internal/parse"
)

// BuildTrees maps parsed entries into insertable row trees. All "what if a
// field is missing" decisions live here, not in persistence code:
//
//   - a missing or unparseable date falls back to today
//   - user identity comes from the caller, never from the model
//   - raw_input falls back to the verbatim utterance
//   - consecutive mentions of the same exercise continue set numbering
//     instead of restarting, and set numbers are re-sequenced 1..n
//   - metrics with a null value are dropped, never stored as placeholders
func BuildTrees(log *parse.ParsedLog, userID int, username, utterance string, today time.Time) []models.EntryTree {
	trees := make([]models.EntryTree, 0, len(log.Entries))

	for _, entry := range log.Entries {
		date := today
		if d, err := time.Parse("2006-01-02", entry.Date); err == nil {
			date = d
		}

		rawInput := entry.RawInput
		if rawInput == "" {
			rawInput = utterance
		}

		tree := models.EntryTree{
			Workout: models.WorkoutRow{
				ID:       uuid.New(),
				UserID:   userID,
				Date:     date,
				Username: username,
				RawInput: rawInput,
			},
		}

		for _, ex := range entry.Exercises {
			name := strings.TrimSpace(ex.Name)
			if name == "" {
				continue
			}

			// The model sometimes emits "pull-ups, then pull-ups again" as
			// two exercise objects. Fold consecutive duplicates into one so
			// set numbering continues rather than restarting.
			if n := len(tree.Exercises); n > 0 &&
				strings.EqualFold(tree.Exercises[n-1].Row.Name, name) {
				appendSets(&tree.Exercises[n-1], ex.Sets)
				continue
			}

			activityType := ex.ActivityType
			if activityType == "" {
				activityType = "exercise"
			}

			exTree := models.ExerciseTree{
				Row: models.ExerciseRow{
					Name:         name,
					ActivityType: activityType,
					Notes:        ex.Notes,
					Position:     len(tree.Exercises),
				},
			}
			appendSets(&exTree, ex.Sets)
			tree.Exercises = append(tree.Exercises, exTree)
		}

		trees = append(trees, tree)
	}

	return trees
}

// appendSets adds sets to an exercise, re-sequencing set numbers so they
// stay strictly increasing from 1 regardless of what the model emitted.
func appendSets(ex *models.ExerciseTree, sets []parse.Set) {
	for _, set := range sets {
		row := models.SetTree{
			Row: models.SetRow{SetNumber: len(ex.Sets) + 1},
		}
		for _, m := range set.Metrics {
			if m.Value == nil {
				continue
			}
			row.Metrics = append(row.Metrics, normalizeMetric(m))
		}
		ex.Sets = append(ex.Sets, row)
	}
}

// normalizeMetric converts minutes-based time phrasing to seconds in case
// the model ignored the prompt's normalization instruction.
func normalizeMetric(m parse.Metric) models.MetricRow {
	value := *m.Value
	unit := m.Unit
	if m.Type == "time" && (unit == "min" || unit == "minutes") {
		value *= 60
		unit = "sec"
	}
	return models.MetricRow{
		MetricType: m.Type,
		Value:      value,
		Unit:       unit,
	}
}
