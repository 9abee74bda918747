package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/talentbrains/matching-engine/internal/config"
	"github.com/talentbrains/matching-engine/internal/matching"
	"github.com/talentbrains/matching-engine/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	service        *matching.Service
	repo           storage.Repository
	authMiddleware *AuthMiddleware
	authEnabled    bool
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	service *matching.Service,
	repo storage.Repository,
	authEnabled bool,
) *Server {
	s := &Server{
		config:         cfg,
		service:        service,
		repo:           repo,
		authMiddleware: NewAuthMiddleware(repo),
		authEnabled:    authEnabled,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS: the web app's dev origins plus whatever fronts it in prod
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health checks (public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Matching API
	r.Route("/api/matching", func(r chi.Router) {
		if s.authEnabled {
			r.Use(s.authMiddleware.Authenticate)
			r.Use(s.authMiddleware.RequirePermission("matching:read"))
		}

		r.Get("/talents", s.handleListTalents)
		r.Get("/jobs", s.handleListJobs)
		r.Post("/talent/{talentID}/jobs", s.handleMatchTalentToJobs)
		r.Post("/job/{jobID}/talents", s.handleMatchJobToTalents)
		r.Get("/talent/{talentID}/job/{jobID}", s.handleGetSpecificMatch)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
