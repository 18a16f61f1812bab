package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/meltforce/replog/internal/models"
)

type stubStore struct {
	trees []models.EntryTree
}

func (s *stubStore) InsertEntry(_ context.Context, tree models.EntryTree) (uuid.UUID, error) {
	s.trees = append(s.trees, tree)
	return tree.Workout.ID, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const validExport = `{
	"entries": [{
		"date": "2024-06-15",
		"exercises": [{
			"name": "pull-ups",
			"sets": [{"set_number": 1, "metrics": [{"type": "reps", "value": 10, "unit": "reps"}]}]
		}]
	}]
}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestImportValidAndBroken verifies valid files are inserted, a broken file
// is counted without aborting the run, and non-JSON files are ignored.
func TestImportValidAndBroken(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", validExport)
	writeFile(t, dir, "b.json", `{"not": "an export"}`)
	writeFile(t, dir, "notes.txt", "ignore me")

	store := &stubStore{}
	imp := New(store, nil, 1, "import", discard(), false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.FilesProcessed != 1 || stats.FilesErrored != 1 {
		t.Errorf("stats = %+v, want 1 processed, 1 errored", stats)
	}
	if stats.EntriesInserted != 1 || stats.ExercisesInserted != 1 {
		t.Errorf("stats = %+v, want 1 entry, 1 exercise", stats)
	}
	if len(store.trees) != 1 {
		t.Fatalf("inserted trees = %d, want 1", len(store.trees))
	}
	if store.trees[0].Workout.UserID != 1 {
		t.Errorf("user id = %d, want 1", store.trees[0].Workout.UserID)
	}
}

// TestImportSkipsAlreadyImported verifies a second run over the same
// directory inserts nothing.
func TestImportSkipsAlreadyImported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", validExport)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("state db: %v", err)
	}
	defer state.Close()

	store := &stubStore{}
	imp := New(store, state, 1, "import", discard(), false)
	if _, err := imp.Import(context.Background(), dir); err != nil {
		t.Fatalf("first run: %v", err)
	}

	imp = New(store, state, 1, "import", discard(), false)
	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.FilesSkipped != 1 || stats.FilesProcessed != 0 {
		t.Errorf("stats = %+v, want 1 skipped", stats)
	}
	if len(store.trees) != 1 {
		t.Errorf("trees = %d, want 1 (no duplicate insert)", len(store.trees))
	}
}

// TestImportDryRun verifies dry-run counts entries without inserting or
// recording state.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", validExport)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("state db: %v", err)
	}
	defer state.Close()

	store := &stubStore{}
	imp := New(store, state, 1, "import", discard(), true)
	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.EntriesInserted != 1 {
		t.Errorf("entries = %d, want 1 counted", stats.EntriesInserted)
	}
	if len(store.trees) != 0 {
		t.Errorf("trees = %d, want 0 in dry run", len(store.trees))
	}

	// Dry run must not mark state, a real run afterwards still imports
	imp = New(store, state, 1, "import", discard(), false)
	stats, err = imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("real run: %v", err)
	}
	if stats.FilesProcessed != 1 {
		t.Errorf("real run processed = %d, want 1", stats.FilesProcessed)
	}
}

// TestStateDBRoundTrip verifies the mark/check cycle and that a changed
// hash invalidates the skip.
func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("state db: %v", err)
	}
	defer state.Close()

	done, err := state.IsImported("a.json", 10, "abc")
	if err != nil || done {
		t.Fatalf("fresh file: done=%v err=%v", done, err)
	}

	if err := state.MarkImported("a.json", 10, "abc"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	done, err = state.IsImported("a.json", 10, "abc")
	if err != nil || !done {
		t.Fatalf("marked file: done=%v err=%v", done, err)
	}

	done, err = state.IsImported("a.json", 10, "different")
	if err != nil || done {
		t.Fatalf("changed hash: done=%v err=%v", done, err)
	}
}
