// Package logbook runs the utterance-to-rows pipeline: build prompt, call
// the model, parse the completion, map to rows, enrich names, persist.
package logbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/replog/internal/llm"
	"github.com/meltforce/replog/internal/models"
	"github.com/meltforce/replog/internal/parse"
	"github.com/meltforce/replog/internal/prompt"
)

// ErrEmptyUtterance is returned when the input is blank. Bad input is
// rejected here at the boundary, before the prompt builder sees it.
var ErrEmptyUtterance = errors.New("empty utterance")

// Store is the subset of storage the pipeline needs.
type Store interface {
	InsertEntry(ctx context.Context, tree models.EntryTree) (uuid.UUID, error)
	DeleteLatestExercise(ctx context.Context, userID int) (string, error)
}

// Namer normalizes an exercise name against the user's logged history.
// Optional; a nil Namer skips enrichment.
type Namer interface {
	Normalize(ctx context.Context, userID int, name string) string
}

// Service wires the pipeline's collaborators together.
type Service struct {
	store Store
	llm   llm.Completer
	names Namer
	log   *slog.Logger
}

// NewService creates a Service. names may be nil to disable enrichment.
func NewService(store Store, completer llm.Completer, names Namer, log *slog.Logger) *Service {
	return &Service{store: store, llm: completer, names: names, log: log}
}

// Result reports what a Log call did.
type Result struct {
	EntriesLogged int         `json:"entries_logged"`
	WorkoutIDs    []uuid.UUID `json:"workout_ids,omitempty"`
	Deleted       string      `json:"deleted,omitempty"`
}

// Log processes one utterance end to end. Parse failures propagate with
// their kind intact (*parse.MalformedResponseError,
// *parse.SchemaViolationError) so transports can phrase user-facing
// messages differently; no retries happen here.
func (s *Service) Log(ctx context.Context, userID int, username, utterance string) (*Result, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}

	if IsDeleteLatest(utterance) {
		name, err := s.store.DeleteLatestExercise(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("deleting latest exercise: %w", err)
		}
		s.log.Info("deleted latest exercise", "user_id", userID, "exercise", name)
		return &Result{Deleted: name}, nil
	}

	p := prompt.Build(utterance, time.Now())
	completion, err := s.llm.Complete(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	parsed, err := parse.Parse(completion)
	if err != nil {
		s.log.Warn("parse failed", "user_id", userID, "error", err)
		return nil, err
	}

	trees := BuildTrees(parsed, userID, username, utterance, time.Now())

	if s.names != nil {
		for t := range trees {
			for e := range trees[t].Exercises {
				row := &trees[t].Exercises[e].Row
				row.Name = s.names.Normalize(ctx, userID, row.Name)
			}
		}
	}

	ids := make([]uuid.UUID, 0, len(trees))
	for _, tree := range trees {
		id, err := s.store.InsertEntry(ctx, tree)
		if err != nil {
			return nil, fmt.Errorf("persisting entry: %w", err)
		}
		ids = append(ids, id)
		s.log.Info("logged workout entry",
			"user_id", userID,
			"date", tree.Workout.Date.Format("2006-01-02"),
			"exercises", len(tree.Exercises),
		)
	}

	return &Result{EntriesLogged: len(ids), WorkoutIDs: ids}, nil
}
