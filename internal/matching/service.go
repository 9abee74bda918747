// Package matching contains the query service behind the matching API.
// It is transport-agnostic: the HTTP layer (api package) and the warm-up
// job both drive it.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentbrains/matching-engine/internal/cache"
	"github.com/talentbrains/matching-engine/internal/models"
	"github.com/talentbrains/matching-engine/internal/scoring"
	"github.com/talentbrains/matching-engine/internal/storage"
)

// Sentinel errors dispatched by the HTTP layer.
var (
	ErrTalentNotFound = errors.New("talent not found")
	ErrJobNotFound    = errors.New("job not found")
	ErrInvalidLimit   = errors.New("limit must be between 1 and 50")
)

const (
	// DefaultLimit applies when the caller omits the limit parameter.
	DefaultLimit = 10
	// MaxLimit bounds the result size a single request may ask for.
	MaxLimit = 50
)

// RankMeta describes how a ranking was produced, so degraded (cached)
// responses are distinguishable from fresh ones.
type RankMeta struct {
	Cached     bool
	ComputedAt time.Time
}

// Service answers matching queries. Each request is an independent,
// stateless computation: candidates are batch-fetched once, scored across
// the engine's worker pool, then ranked and truncated.
type Service struct {
	repo          storage.Repository
	cache         *cache.Cache
	engine        *scoring.Engine
	maxCandidates int
}

// NewService returns a configured Service. cache may be nil; results are
// then recomputed on every request. maxCandidates caps the candidate pool
// scanned before truncation to bound latency.
func NewService(repo storage.Repository, c *cache.Cache, engine *scoring.Engine, maxCandidates int) *Service {
	if maxCandidates <= 0 {
		maxCandidates = 1000
	}
	return &Service{repo: repo, cache: c, engine: engine, maxCandidates: maxCandidates}
}

// MatchTalentToJobs ranks all active jobs for the given talent, best first.
// An empty job pool yields an empty slice, not an error.
func (s *Service) MatchTalentToJobs(ctx context.Context, talentID string, limit int) ([]models.MatchResult, RankMeta, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, RankMeta{}, err
	}

	talent, err := s.repo.GetTalent(ctx, talentID)
	if err != nil {
		return nil, RankMeta{}, fmt.Errorf("load talent: %w", err)
	}
	if talent == nil {
		return nil, RankMeta{}, fmt.Errorf("%w: %s", ErrTalentNotFound, talentID)
	}

	if s.cache != nil {
		if hit, ok := s.cache.GetTalentMatches(ctx, talentID); ok {
			return truncate(hit.Results, limit), RankMeta{Cached: true, ComputedAt: hit.ComputedAt}, nil
		}
	}

	jobs, err := s.repo.ListActiveJobs(ctx, s.maxCandidates)
	if err != nil {
		if results, meta, ok := s.storedTalentMatches(ctx, talentID, limit); ok {
			slog.Warn("serving stored matches for talent", "talent_id", talentID, "error", err)
			return results, meta, nil
		}
		return nil, RankMeta{}, fmt.Errorf("load candidate jobs: %w", err)
	}

	results, err := s.engine.RankJobsForTalent(ctx, talent, jobs, 0)
	if err != nil {
		return nil, RankMeta{}, err
	}

	computedAt := time.Now().UTC()
	s.store(ctx, talentID, "", results, computedAt)

	return truncate(results, limit), RankMeta{ComputedAt: computedAt}, nil
}

// MatchJobToTalents ranks all matchable talents (availability other than
// not_looking) for the given job.
func (s *Service) MatchJobToTalents(ctx context.Context, jobID string, limit int) ([]models.MatchResult, RankMeta, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, RankMeta{}, err
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, RankMeta{}, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, RankMeta{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	if s.cache != nil {
		if hit, ok := s.cache.GetJobMatches(ctx, jobID); ok {
			return truncate(hit.Results, limit), RankMeta{Cached: true, ComputedAt: hit.ComputedAt}, nil
		}
	}

	talents, err := s.repo.ListAvailableTalents(ctx, s.maxCandidates)
	if err != nil {
		if results, meta, ok := s.storedJobMatches(ctx, jobID, limit); ok {
			slog.Warn("serving stored matches for job", "job_id", jobID, "error", err)
			return results, meta, nil
		}
		return nil, RankMeta{}, fmt.Errorf("load candidate talents: %w", err)
	}

	results, err := s.engine.RankTalentsForJob(ctx, job, talents, 0)
	if err != nil {
		return nil, RankMeta{}, err
	}

	computedAt := time.Now().UTC()
	s.store(ctx, "", jobID, results, computedAt)

	return truncate(results, limit), RankMeta{ComputedAt: computedAt}, nil
}

// GetSpecificMatch computes the match between one talent and one job on
// demand; the pair does not need to be pre-cached.
func (s *Service) GetSpecificMatch(ctx context.Context, talentID, jobID string) (*models.MatchResult, error) {
	talent, err := s.repo.GetTalent(ctx, talentID)
	if err != nil {
		return nil, fmt.Errorf("load talent: %w", err)
	}
	if talent == nil {
		return nil, fmt.Errorf("%w: %s", ErrTalentNotFound, talentID)
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	result := s.engine.ScorePair(talent, job)
	result.JobID = job.ID

	record := models.MatchRecord{
		TalentID:   talent.ID,
		JobID:      job.ID,
		Result:     result,
		ComputedAt: time.Now().UTC(),
	}
	if err := s.repo.UpsertMatches(ctx, []models.MatchRecord{record}); err != nil {
		slog.Warn("persist match failed", "talent_id", talentID, "job_id", jobID, "error", err)
	}

	return &result, nil
}

// Stats reports pool sizes and service status
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	talents, err := s.repo.CountTalents(ctx)
	if err != nil {
		return nil, fmt.Errorf("count talents: %w", err)
	}
	jobs, err := s.repo.CountJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	return &models.Stats{TotalTalents: talents, TotalJobs: jobs, Status: "operational"}, nil
}

// ListTalents returns listing summaries of all matchable talents
func (s *Service) ListTalents(ctx context.Context) ([]models.TalentSummary, error) {
	talents, err := s.repo.ListAvailableTalents(ctx, s.maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("list talents: %w", err)
	}
	out := make([]models.TalentSummary, 0, len(talents))
	for _, t := range talents {
		out = append(out, t.Summary())
	}
	return out, nil
}

// ListJobs returns listing summaries of all active jobs
func (s *Service) ListJobs(ctx context.Context) ([]models.JobSummary, error) {
	jobs, err := s.repo.ListActiveJobs(ctx, s.maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	out := make([]models.JobSummary, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Summary())
	}
	return out, nil
}

// store writes a freshly computed ranking to redis and the matches table.
// Both writes are best-effort: a cache outage degrades to recomputation,
// never to a failed request.
func (s *Service) store(ctx context.Context, talentID, jobID string, results []models.MatchResult, computedAt time.Time) {
	if s.cache != nil {
		var err error
		if talentID != "" {
			err = s.cache.SetTalentMatches(ctx, talentID, results, computedAt)
		} else {
			err = s.cache.SetJobMatches(ctx, jobID, results, computedAt)
		}
		if err != nil {
			slog.Warn("cache write failed", "talent_id", talentID, "job_id", jobID, "error", err)
		}
	}

	records := make([]models.MatchRecord, 0, len(results))
	for _, r := range results {
		rec := models.MatchRecord{TalentID: talentID, JobID: jobID, Result: r, ComputedAt: computedAt}
		if talentID == "" {
			rec.TalentID = r.TalentID
		}
		if jobID == "" {
			rec.JobID = r.JobID
		}
		records = append(records, rec)
	}
	if err := s.repo.UpsertMatches(ctx, records); err != nil {
		slog.Warn("persist matches failed", "talent_id", talentID, "job_id", jobID, "error", err)
	}
}

// storedTalentMatches reads previously persisted matches for a talent as a
// degraded response when fresh computation is impossible. Stale results are
// flagged Cached with their original computation time.
func (s *Service) storedTalentMatches(ctx context.Context, talentID string, limit int) ([]models.MatchResult, RankMeta, bool) {
	records, err := s.repo.MatchesForTalent(ctx, talentID, limit)
	return degradedResults(records, err)
}

func (s *Service) storedJobMatches(ctx context.Context, jobID string, limit int) ([]models.MatchResult, RankMeta, bool) {
	records, err := s.repo.MatchesForJob(ctx, jobID, limit)
	return degradedResults(records, err)
}

func degradedResults(records []models.MatchRecord, err error) ([]models.MatchResult, RankMeta, bool) {
	if err != nil || len(records) == 0 {
		return nil, RankMeta{}, false
	}

	results := make([]models.MatchResult, 0, len(records))
	var computedAt time.Time
	for _, rec := range records {
		results = append(results, rec.Result)
		if rec.ComputedAt.After(computedAt) {
			computedAt = rec.ComputedAt
		}
	}
	return results, RankMeta{Cached: true, ComputedAt: computedAt}, true
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultLimit, nil
	}
	if limit < 1 || limit > MaxLimit {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	return limit, nil
}

func truncate(results []models.MatchResult, limit int) []models.MatchResult {
	if results == nil {
		return []models.MatchResult{}
	}
	if limit > 0 && limit < len(results) {
		return results[:limit]
	}
	return results
}
