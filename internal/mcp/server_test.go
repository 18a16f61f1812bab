package mcp

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/replog/internal/logbook"
	"github.com/meltforce/replog/internal/parse"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestDefaultTimeRange verifies time range defaults (last 7 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 167 || diff.Hours() > 169 { // ~168 hours = 7 days
		t.Errorf("default range = %.0f hours, want ~168", diff.Hours())
	}

	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2024 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if end.Year() != 2024 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2024-01-31", end)
	}

	_, _, err = defaultTimeRange("not-a-date", "")
	if err == nil {
		t.Error("expected error for invalid date")
	}
}

type stubLogbook struct {
	result *logbook.Result
	err    error
	gotID  int
	gotTxt string
}

func (s *stubLogbook) Log(_ context.Context, userID int, _, utterance string) (*logbook.Result, error) {
	s.gotID = userID
	s.gotTxt = utterance
	return s.result, s.err
}

func callLog(t *testing.T, lb Logbook, ctx context.Context, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	h := &handlers{lb: lb, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := h.logWorkout(ctx, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return result
}

// TestLogWorkoutTool verifies the tool passes text and the context user ID
// into the pipeline and returns a JSON result on success.
func TestLogWorkoutTool(t *testing.T) {
	lb := &stubLogbook{result: &logbook.Result{EntriesLogged: 1}}
	ctx := WithUserID(context.Background(), 7)

	result := callLog(t, lb, ctx, map[string]any{"text": "did 20 squats"})

	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	if lb.gotID != 7 {
		t.Errorf("user id = %d, want 7", lb.gotID)
	}
	if lb.gotTxt != "did 20 squats" {
		t.Errorf("utterance = %q", lb.gotTxt)
	}
}

// TestLogWorkoutToolMissingText verifies a missing text argument is a tool
// error, not a transport error.
func TestLogWorkoutToolMissingText(t *testing.T) {
	result := callLog(t, &stubLogbook{}, context.Background(), map[string]any{})
	if !result.IsError {
		t.Error("expected tool error for missing text")
	}
}

// TestLogWorkoutToolParseFailures verifies parse failure kinds surface as
// tool errors with distinct messages.
func TestLogWorkoutToolParseFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"malformed", &parse.MalformedResponseError{Raw: "junk"}},
		{"schema violation", &parse.SchemaViolationError{Field: "entries", Reason: "missing"}},
		{"empty utterance", logbook.ErrEmptyUtterance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callLog(t, &stubLogbook{err: tt.err}, context.Background(), map[string]any{"text": "x"})
			if !result.IsError {
				t.Error("expected tool error")
			}
		})
	}
}
