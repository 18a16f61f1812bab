package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/meltforce/replog/internal/logbook"
	"github.com/meltforce/replog/internal/parse"
)

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

func testServer(lb Logbook) *Server {
	return &Server{
		logbook: lb,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func postLog(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/log", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleLog(rec, req)
	return rec
}

// TestHandleLogSuccess verifies a successful pipeline run returns the result
// and passes the identity and utterance through.
func TestHandleLogSuccess(t *testing.T) {
	lb := &stubLogbook{result: &logbook.Result{EntriesLogged: 2}}
	rec := postLog(t, testServer(lb), `{"text":"ran 5k and did 10 push-ups yesterday"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result logbook.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result.EntriesLogged != 2 {
		t.Errorf("entries_logged = %d, want 2", result.EntriesLogged)
	}
	if lb.gotID != 1 {
		t.Errorf("user id = %d, want default 1", lb.gotID)
	}
	if lb.gotTxt != "ran 5k and did 10 push-ups yesterday" {
		t.Errorf("utterance = %q", lb.gotTxt)
	}
}

// TestHandleLogInvalidJSON verifies an undecodable request body is a 400.
func TestHandleLogInvalidJSON(t *testing.T) {
	rec := postLog(t, testServer(&stubLogbook{}), `{"text":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestHandleLogErrorMapping verifies each pipeline failure kind maps to its
// own status code.
func TestHandleLogErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty utterance", logbook.ErrEmptyUtterance, http.StatusBadRequest},
		{"malformed response", &parse.MalformedResponseError{Raw: "junk"}, http.StatusBadGateway},
		{"schema violation", &parse.SchemaViolationError{Field: "entries", Reason: "missing"}, http.StatusUnprocessableEntity},
		{"storage failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLog(t, testServer(&stubLogbook{err: tt.err}), `{"text":"5 pull-ups"}`)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if body["error"] == "" {
				t.Error("error body missing message")
			}
		})
	}
}

// TestHandleMeDefault verifies /api/v1/me returns the dev identity when no
// identity middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := testServer(&stubLogbook{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want local", info.Login)
	}
}

// TestHandleHealth verifies the liveness endpoint.
func TestHandleHealth(t *testing.T) {
	s := testServer(&stubLogbook{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestParseTimeRange covers the default window and both accepted formats.
func TestParseTimeRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("default range error: %v", err)
	}
	if end.Sub(start) != 7*24*time.Hour {
		t.Errorf("default window = %v, want 7 days", end.Sub(start))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/workouts?start=2024-06-01&end=2024-06-15", nil)
	start, end, err = parseTimeRange(req)
	if err != nil {
		t.Fatalf("date range error: %v", err)
	}
	if start.Format("2006-01-02") != "2024-06-01" {
		t.Errorf("start = %v", start)
	}
	// Date-only end extends to end of day
	if end.Format("2006-01-02") != "2024-06-16" {
		t.Errorf("end = %v, want exclusive next day", end)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/workouts?start=bogus", nil)
	if _, _, err := parseTimeRange(req); err == nil {
		t.Error("expected error for bogus start")
	}
}
