// Package importer bulk-loads workout log exports. Export files are JSON
// documents in the same entries shape the model emits, so they run through
// the same validation and mapping as live input.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/replog/internal/logbook"
	"github.com/meltforce/replog/internal/models"
	"github.com/meltforce/replog/internal/parse"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	EntriesInserted   int
	ExercisesInserted int
}

// Store is the subset of storage the importer needs.
type Store interface {
	InsertEntry(ctx context.Context, tree models.EntryTree) (uuid.UUID, error)
}

// Importer reads .json export files from a directory and inserts entries.
type Importer struct {
	store    Store
	state    *StateDB
	userID   int
	username string
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. state may be nil to disable skip tracking.
func New(store Store, state *StateDB, userID int, username string, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, state: state, userID: userID, username: username, log: log, dryRun: dryRun}
}

// Import processes all .json files under dir in name order. A file that
// fails validation is counted and skipped; it never aborts the run.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return &imp.stats, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, f); err != nil {
			imp.log.Warn("import failed", "file", f, "error", err)
			imp.stats.FilesErrored++
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	rel := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	if imp.state != nil {
		done, err := imp.state.IsImported(rel, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("checking state: %w", err)
		}
		if done {
			imp.stats.FilesSkipped++
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Exports use the same entries document shape as model output, so the
	// same validation applies.
	parsed, err := parse.Parse(string(data))
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	trees := logbook.BuildTrees(parsed, imp.userID, imp.username, rel, time.Now())

	if !imp.dryRun {
		for _, tree := range trees {
			if _, err := imp.store.InsertEntry(ctx, tree); err != nil {
				return fmt.Errorf("inserting entry: %w", err)
			}
			imp.stats.EntriesInserted++
			imp.stats.ExercisesInserted += len(tree.Exercises)
		}

		if imp.state != nil {
			if err := imp.state.MarkImported(rel, info.Size(), hash); err != nil {
				return fmt.Errorf("marking state: %w", err)
			}
		}
	} else {
		imp.stats.EntriesInserted += len(trees)
		for _, tree := range trees {
			imp.stats.ExercisesInserted += len(tree.Exercises)
		}
	}

	imp.stats.FilesProcessed++
	imp.log.Info("imported file", "file", rel, "entries", len(trees))
	return nil
}
