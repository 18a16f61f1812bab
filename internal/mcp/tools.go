package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/replog/internal/logbook"
	"github.com/meltforce/replog/internal/parse"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Log a workout described in plain language (e.g. '3 sets of 10 push-ups, then ran 5k'). Dates like 'yesterday' are understood; entries without a date are logged for today."),
	mcp.WithString("text", mcp.Required(), mcp.Description("The workout description, verbatim")),
	mcp.WithString("username", mcp.Description("Display name to record with the entry. Defaults to 'mcp'.")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Query logged workouts in a date range. Returns workout summaries with exercise counts."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout with its full exercise, set, and metric detail."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetExerciseNames = mcp.NewTool("get_exercise_names",
	mcp.WithDescription("List the distinct exercise names the user has logged."),
)

var toolDeleteLatestExercise = mcp.NewTool("delete_latest_exercise",
	mcp.WithDescription("Delete the most recently logged exercise. Returns the name of the deleted exercise."),
)

// --- Tool handlers ---

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	username := req.GetString("username", "mcp")
	uid := UserIDFromContext(ctx)

	result, err := h.lb.Log(ctx, uid, username, text)
	if err != nil {
		return h.logError(err), nil
	}

	out, err := mcp.NewToolResultJSON(result)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

// logError phrases pipeline failures for the assistant. Parse failure kinds
// keep distinct messages so the assistant knows whether retrying or
// rephrasing helps.
func (h *handlers) logError(err error) *mcp.CallToolResult {
	var malformed *parse.MalformedResponseError
	var violation *parse.SchemaViolationError

	switch {
	case errors.Is(err, logbook.ErrEmptyUtterance):
		return mcp.NewToolResultError("no workout text provided")
	case errors.As(err, &malformed):
		return mcp.NewToolResultError("the model returned an unreadable response, retry the same text")
	case errors.As(err, &violation):
		return mcp.NewToolResultError("the text could not be interpreted as a workout, rephrase it")
	default:
		h.log.Error("mcp log_workout", "error", err)
		return mcp.NewToolResultError("logging failed: " + err.Error())
	}
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	workouts, err := h.db.QueryWorkouts(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout ID"), nil
	}

	uid := UserIDFromContext(ctx)
	detail, err := h.db.GetWorkout(ctx, workoutID, uid)
	if err != nil {
		return mcp.NewToolResultError("workout not found"), nil
	}

	result, err := mcp.NewToolResultJSON(detail)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseNames(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	names, err := h.db.DistinctExerciseNames(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_exercise_names", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(names)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) deleteLatestExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	name, err := h.db.DeleteLatestExercise(ctx, uid)
	if err != nil {
		h.log.Error("mcp delete_latest_exercise", "error", err)
		return mcp.NewToolResultError("delete failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]string{"deleted": name})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
