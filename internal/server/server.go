// Package server exposes repository analysis over HTTP: a JSON API and a
// single-page HTML dashboard.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/naka-gawa/github-repo-analyzer/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Analyzer runs one repository analysis.
type Analyzer interface {
	Analyze(ctx context.Context, repoURL string) *domain.AnalysisResult
}

// Server serves the dashboard and the JSON API.
type Server struct {
	analyzer  Analyzer
	templates *template.Template
	logger    *log.Logger
}

// New creates a new Server.
func New(analyzer Analyzer, logger *log.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{analyzer: analyzer, templates: tmpl, logger: logger}, nil
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/analyze", s.handleDashboard)
	r.Get("/api/analyze", s.handleAPI)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			s.logger.Warn("Failed to write health check response.", "err", err)
		}
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Dashboard listening.", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request.",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, dashboardView{})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	repoURL := r.URL.Query().Get("url")
	if repoURL == "" {
		s.render(w, http.StatusOK, dashboardView{})
		return
	}
	result := s.analyzer.Analyze(r.Context(), repoURL)
	s.render(w, http.StatusOK, newDashboardView(repoURL, result))
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	repoURL := r.URL.Query().Get("url")
	if repoURL == "" {
		s.writeJSON(w, http.StatusBadRequest, domain.NewErrorResult("missing url query parameter"))
		return
	}
	s.writeJSON(w, http.StatusOK, s.analyzer.Analyze(r.Context(), repoURL))
}

func (s *Server) render(w http.ResponseWriter, status int, view dashboardView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		s.logger.Error("Failed to render dashboard.", "err", err)
	}
}

// writeJSON encodes v after the status line, so a failed encode can only be logged.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write JSON response.", "status", status, "err", err)
	}
}
