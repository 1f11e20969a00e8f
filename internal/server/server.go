package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/revisio/revisio/internal/config"
	"github.com/revisio/revisio/internal/quiz"
	"github.com/revisio/revisio/internal/store"
)

// Server is the revisio HTTP API server.
type Server struct {
	db      *store.DB
	quiz    quiz.Client // nil when no provider configured
	cfg     config.Config
	router  chi.Router
	version string
	started time.Time

	// now is the clock for time-dependent handlers; tests override it.
	now func() time.Time
}

// New creates a new Server with the given database and version string.
func New(db *store.DB, cfg config.Config, version string) *Server {
	s := &Server{
		db:      db,
		cfg:     cfg,
		version: version,
		started: time.Now(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// SetQuizClient configures the question-generation provider.
func (s *Server) SetQuizClient(c quiz.Client) {
	s.quiz = c
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", s.handleListSubjects)
			r.Post("/", s.handleCreateSubject)
			r.Get("/{subjectID}", s.handleGetSubject)
			r.Delete("/{subjectID}", s.handleDeleteSubject)
			r.Put("/{subjectID}/exam", s.handleSetExamDate)
			r.Put("/{subjectID}/archive", s.handleSetArchived)
			r.Post("/{subjectID}/topics", s.handleCreateTopic)
			r.Get("/{subjectID}/readiness", s.handleReadiness)
			r.Get("/{subjectID}/simulate", s.handleSimulate)
		})

		r.Route("/topics/{topicID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteTopic)
			r.Patch("/status", s.handleTopicStatus)
			r.Put("/material", s.handleTopicMaterial)
			r.Post("/review", s.handleReview)
			r.Get("/reviews", s.handleListReviews)
			r.Post("/grades", s.handleAddGrade)
			r.Post("/quiz", s.handleGenerateQuiz)
		})

		r.Get("/review/queue", s.handleReviewQueue)

		r.Post("/sessions", s.handleAddSession)
		r.Get("/sessions", s.handleListSessions)

		r.Get("/stats/daily", s.handleDailyStats)
		r.Get("/stats/subjects", s.handleSubjectStats)
		r.Get("/stats/streak", s.handleStreak)

		r.Get("/dashboard", s.handleDashboard)
	})

	// Dashboard SPA, when embedded at build time.
	r.Get("/*", spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// asOfParam reads an optional ?as_of=YYYY-MM-DD query parameter, falling
// back to the server clock. Handlers stay deterministic under test by
// always passing explicit times into the core.
func (s *Server) asOfParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return s.now(), nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}
