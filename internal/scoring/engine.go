// Package scoring implements the TalentBrains match-scoring model: four
// factor scorers (skills, experience, location, salary), a weighted
// aggregator, and a ranking engine that scores one profile against a pool
// of candidates concurrently.
package scoring

import (
	"context"
	"sort"
	"sync"

	"github.com/talentbrains/matching-engine/internal/models"
)

// Engine ranks talents against jobs. Scoring a pair is pure and
// side-effect-free, so rankings fan out across a bounded worker pool.
type Engine struct {
	workers int
}

// NewEngine creates an Engine with the given worker-pool size
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = 8
	}
	return &Engine{workers: workers}
}

// ScorePair computes the match between one talent and one job. The result
// carries neither id: callers attach whichever side they ranked over.
func (e *Engine) ScorePair(talent *models.Talent, job *models.Job) models.MatchResult {
	skillScore, matched, missing := SkillScore(talent.Skills, job.Skills)
	expScore := ExperienceScore(talent, job)
	locScore := LocationScore(talent, job)
	salScore := SalaryScore(talent, job)

	overall := Aggregate(skillScore, expScore, locScore, salScore)

	if salScore != nil {
		rounded := Round2(*salScore)
		salScore = &rounded
	}

	return models.MatchResult{
		MatchScore:           Round2(overall),
		SkillMatchScore:      Round2(skillScore),
		ExperienceMatchScore: Round2(expScore),
		LocationMatchScore:   Round2(locScore),
		SalaryMatchScore:     salScore,
		MatchedSkills:        matched,
		MissingSkills:        missing,
		Reason:               BuildReason(skillScore, expScore, locScore, matched, missing),
	}
}

// RankJobsForTalent scores the talent against every candidate job and
// returns results ordered by match score descending, ties broken by job
// recency (newest first) then id, truncated to limit. limit <= 0 means no
// truncation. Scoring stops early if ctx is cancelled.
func (e *Engine) RankJobsForTalent(ctx context.Context, talent *models.Talent, jobs []*models.Job, limit int) ([]models.MatchResult, error) {
	results, err := mapConcurrent(ctx, e.workers, jobs, func(job *models.Job) rankedResult {
		res := e.ScorePair(talent, job)
		res.JobID = job.ID
		return rankedResult{result: res, createdAt: job.CreatedAt.UnixNano(), id: job.ID}
	})
	if err != nil {
		return nil, err
	}
	return finalize(results, limit), nil
}

// RankTalentsForJob is the symmetric ranking over candidate talents
func (e *Engine) RankTalentsForJob(ctx context.Context, job *models.Job, talents []*models.Talent, limit int) ([]models.MatchResult, error) {
	results, err := mapConcurrent(ctx, e.workers, talents, func(talent *models.Talent) rankedResult {
		res := e.ScorePair(talent, job)
		res.TalentID = talent.ID
		return rankedResult{result: res, createdAt: talent.CreatedAt.UnixNano(), id: talent.ID}
	})
	if err != nil {
		return nil, err
	}
	return finalize(results, limit), nil
}

type rankedResult struct {
	result    models.MatchResult
	createdAt int64
	id        string
}

// mapConcurrent applies fn to every candidate across a bounded worker
// pool. Candidates are handed out over a channel so workers observe ctx
// cancellation between pairs.
func mapConcurrent[T any](ctx context.Context, workers int, candidates []T, fn func(T) rankedResult) ([]rankedResult, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	type indexed struct {
		pos       int
		candidate T
	}

	in := make(chan indexed)
	out := make([]rankedResult, len(candidates))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range in {
				out[item.pos] = fn(item.candidate)
			}
		}()
	}

feed:
	for i, c := range candidates {
		select {
		case <-ctx.Done():
			break feed
		case in <- indexed{pos: i, candidate: c}:
		}
	}
	close(in)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// finalize sorts ranked results (score desc, recency desc, id asc) and
// truncates to limit. The three-level ordering keeps repeated calls with
// unchanged inputs byte-stable.
func finalize(results []rankedResult, limit int) []models.MatchResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].result.MatchScore != results[j].result.MatchScore {
			return results[i].result.MatchScore > results[j].result.MatchScore
		}
		if results[i].createdAt != results[j].createdAt {
			return results[i].createdAt > results[j].createdAt
		}
		return results[i].id < results[j].id
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	out := make([]models.MatchResult, len(results))
	for i, r := range results {
		out[i] = r.result
	}
	return out
}
