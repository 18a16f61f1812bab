package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/replog/internal/logbook"
	"github.com/meltforce/replog/internal/parse"
)

type logRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	var payload logRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	userID := userIDFromContext(r)
	info := userInfoFromContext(r)

	result, err := s.logbook.Log(r.Context(), userID, info.DisplayName, payload.Text)
	if err != nil {
		s.writeLogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeLogError maps pipeline failures to responses. The two parse failure
// kinds get distinct statuses and user-facing phrasings; everything else is
// an internal error.
func (s *Server) writeLogError(w http.ResponseWriter, err error) {
	var malformed *parse.MalformedResponseError
	var violation *parse.SchemaViolationError

	switch {
	case errors.Is(err, logbook.ErrEmptyUtterance):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no input provided"})
	case errors.As(err, &malformed):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "the model returned an unreadable response, please try again"})
	case errors.As(err, &violation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "could not interpret that as a workout, try rephrasing"})
	default:
		s.log.Error("log pipeline error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	workouts, err := s.db.QueryWorkouts(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	detail, err := s.db.GetWorkout(r.Context(), workoutID, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleExerciseNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.db.DistinctExerciseNames(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
