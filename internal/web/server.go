// Package web serves the quiz as HTML pages and a JSON API.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

//go:embed templates/*.html
var templateFS embed.FS

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// QuizService loads questions and scores submissions.
type QuizService interface {
	Questions(ctx context.Context) ([]quiz.Question, error)
	Submit(ctx context.Context, sub quiz.Submission) (*quiz.Attempt, error)
	Attempt(ctx context.Context, id string) (*quiz.Attempt, error)
	Attempts(ctx context.Context, limit int) ([]quiz.Attempt, error)
}

// Config holds dependencies for the HTTP server.
type Config struct {
	Title       string
	Quiz        QuizService
	CORSOrigins []string
	Admin       AdminCredentials
	// Checks are run by /readyz, keyed by dependency name.
	Checks map[string]HealthChecker
}

// AdminCredentials protect the results export. An empty PassHash disables it.
type AdminCredentials struct {
	User     string
	PassHash string
}

// Server renders the quiz and handles submissions.
type Server struct {
	title       string
	quiz        QuizService
	admin       AdminCredentials
	corsOrigins []string
	checks      map[string]HealthChecker
	pages       *template.Template
}

// NewServer creates a server and parses its templates.
func NewServer(cfg Config) (*Server, error) {
	pages, err := template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		title:       cfg.Title,
		quiz:        cfg.Quiz,
		admin:       cfg.Admin,
		corsOrigins: cfg.CORSOrigins,
		checks:      cfg.Checks,
		pages:       pages,
	}, nil
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Get("/", s.handleQuizPage)
	r.Post("/submit", s.handleSubmitForm)

	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
		api.Get("/questions", s.handleAPIQuestions)
		api.Post("/submit", s.handleAPISubmit)
		api.Get("/attempts/{attemptID}", s.handleAPIAttempt)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(s.requireAdmin)
		admin.Get("/admin/results.xlsx", s.handleResultsExport)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "dependency", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestLogger logs each request once it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
