package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talentbrains/matching-engine/internal/matching"
	"github.com/talentbrains/matching-engine/internal/models"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// rankedResponse wraps a ranking so cached (possibly stale) results are
// distinguishable from freshly computed ones.
type rankedResponse struct {
	Matches    []models.MatchResult `json:"matches"`
	Total      int                  `json:"total"`
	Cached     bool                 `json:"cached"`
	ComputedAt time.Time            `json:"computed_at"`
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Matching handlers

func (s *Server) handleMatchTalentToJobs(w http.ResponseWriter, r *http.Request) {
	talentID := chi.URLParam(r, "talentID")
	if talentID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "talent id is required")
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	results, meta, err := s.service.MatchTalentToJobs(r.Context(), talentID, limit)
	if err != nil {
		s.respondMatchingError(w, err, "failed to match talent to jobs")
		return
	}

	respondJSON(w, http.StatusOK, rankedResponse{
		Matches:    results,
		Total:      len(results),
		Cached:     meta.Cached,
		ComputedAt: meta.ComputedAt,
	})
}

func (s *Server) handleMatchJobToTalents(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "job id is required")
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	results, meta, err := s.service.MatchJobToTalents(r.Context(), jobID, limit)
	if err != nil {
		s.respondMatchingError(w, err, "failed to match job to talents")
		return
	}

	respondJSON(w, http.StatusOK, rankedResponse{
		Matches:    results,
		Total:      len(results),
		Cached:     meta.Cached,
		ComputedAt: meta.ComputedAt,
	})
}

func (s *Server) handleGetSpecificMatch(w http.ResponseWriter, r *http.Request) {
	talentID := chi.URLParam(r, "talentID")
	jobID := chi.URLParam(r, "jobID")
	if talentID == "" || jobID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "talent id and job id are required")
		return
	}

	result, err := s.service.GetSpecificMatch(r.Context(), talentID, jobID)
	if err != nil {
		s.respondMatchingError(w, err, "failed to compute match")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		slog.Error("failed to get stats", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Listing handlers

func (s *Server) handleListTalents(w http.ResponseWriter, r *http.Request) {
	talents, err := s.service.ListTalents(r.Context())
	if err != nil {
		slog.Error("failed to list talents", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list talents")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"talents": talents,
		"count":   len(talents),
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.service.ListJobs(r.Context())
	if err != nil {
		slog.Error("failed to list jobs", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list jobs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// respondMatchingError maps service sentinel errors to HTTP responses
func (s *Server) respondMatchingError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, matching.ErrTalentNotFound):
		respondError(w, http.StatusNotFound, "talent_not_found", "talent not found")
	case errors.Is(err, matching.ErrJobNotFound):
		respondError(w, http.StatusNotFound, "job_not_found", "job not found")
	case errors.Is(err, matching.ErrInvalidLimit):
		respondError(w, http.StatusBadRequest, "invalid_range", err.Error())
	default:
		slog.Error(logMsg, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", logMsg)
	}
}

// parseLimit reads the optional limit query parameter. Zero means "use the
// default"; anything unparseable or out of range is rejected here so the
// caller sees a consistent invalid_range error.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > matching.MaxLimit {
		respondError(w, http.StatusBadRequest, "invalid_range",
			"limit must be an integer between 1 and "+strconv.Itoa(matching.MaxLimit))
		return 0, false
	}
	return limit, true
}
