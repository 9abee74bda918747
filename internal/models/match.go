package models

import (
	"time"
)

// MatchResult is the wire shape produced by the scoring engine.
// Exactly one of TalentID / JobID is set: rankings keyed by a talent carry
// the job id of each candidate, and vice versa. All scores are 0-100,
// rounded to two decimals. SalaryMatchScore is nil when either side states
// no annual range; its weight is redistributed across the other factors.
type MatchResult struct {
	TalentID             string   `json:"talent_id,omitempty"`
	JobID                string   `json:"job_id,omitempty"`
	MatchScore           float64  `json:"match_score"`
	SkillMatchScore      float64  `json:"skill_match_score"`
	ExperienceMatchScore float64  `json:"experience_match_score"`
	LocationMatchScore   float64  `json:"location_match_score"`
	SalaryMatchScore     *float64 `json:"salary_match_score"`
	MatchedSkills        []string `json:"matched_skills"`
	MissingSkills        []string `json:"missing_skills"`
	Reason               string   `json:"reason"`
}

// MatchRecord is a MatchResult persisted to the matches table for fallback
// reads. Upserts are idempotent, keyed by (talent_id, job_id).
type MatchRecord struct {
	TalentID   string
	JobID      string
	Result     MatchResult
	ComputedAt time.Time
}

// Stats is returned by GET /api/matching/stats
type Stats struct {
	TotalTalents int    `json:"total_talents"`
	TotalJobs    int    `json:"total_jobs"`
	Status       string `json:"status"`
}
