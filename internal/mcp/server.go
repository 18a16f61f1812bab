// Package mcp exposes the logbook over the Model Context Protocol so
// assistants can log and query workouts conversationally.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/replog/internal/logbook"
	"github.com/meltforce/replog/internal/storage"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Logbook runs the natural-language logging pipeline.
type Logbook interface {
	Log(ctx context.Context, userID int, username, utterance string) (*logbook.Result, error)
}

// New creates an MCP server with all tools and resources registered.
func New(db *storage.DB, lb Logbook, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepLog workout logging server. Log workouts described in plain language and query logged exercises, sets, and metrics. All data is scoped to the authenticated user."),
	)

	h := &handlers{db: db, lb: lb, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetExerciseNames, Handler: h.getExerciseNames},
		server.ServerTool{Tool: toolDeleteLatestExercise, Handler: h.deleteLatestExercise},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	db  *storage.DB
	lb  Logbook
	log *slog.Logger
}
