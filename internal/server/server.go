package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/replog/internal/logbook"
	"github.com/meltforce/replog/internal/storage"
)

// Logbook runs the natural-language logging pipeline.
type Logbook interface {
	Log(ctx context.Context, userID int, username, utterance string) (*logbook.Result, error)
}

// Users resolves a login to a stable user ID, creating the row on first use.
type Users interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      *storage.DB
	logbook Logbook
	users   Users
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, lb Logbook, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		logbook: lb,
		users:   db,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(HeaderIdentity(s.users, s.log))

	// Logging endpoint (API key required)
	s.router.Route("/api/v1/log", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleLog)
	})

	// Read API endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/workouts", s.handleQueryWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/exercises/names", s.handleExerciseNames)
	s.router.Get("/api/v1/me", s.handleMe)

	s.router.Get("/health", s.handleHealth)
}

// SetFrontend mounts the embedded frontend filesystem.
// Unmatched routes serve index.html.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
