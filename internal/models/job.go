package models

import (
	"time"
)

// JobStatus represents the lifecycle state of a job posting
type JobStatus string

const (
	JobDraft   JobStatus = "draft"
	JobActive  JobStatus = "active"
	JobPaused  JobStatus = "paused"
	JobClosed  JobStatus = "closed"
	JobExpired JobStatus = "expired"
)

// IsOpen returns true if the job should appear in talent-side rankings
func (s JobStatus) IsOpen() bool {
	return s == JobActive
}

// JobSkill is one skill demanded by a job posting
type JobSkill struct {
	SkillID     string `json:"skill_id"`
	Name        string `json:"name"`
	Proficiency int    `json:"proficiency_level"` // 1-5 requested level
	IsRequired  bool   `json:"is_required"`
}

// Job is a position posted by a company
type Job struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id,omitempty"`
	Company         string          `json:"company"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Location        string          `json:"location"`
	EmploymentType  string          `json:"employment_type"`
	RemoteAllowed   bool            `json:"remote_allowed"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	MinYears        int             `json:"min_years_experience"`
	MaxYears        *int            `json:"max_years_experience,omitempty"`
	SalaryMin       *float64        `json:"salary_min,omitempty"`
	SalaryMax       *float64        `json:"salary_max,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	Status          JobStatus       `json:"status"`
	Skills          []JobSkill      `json:"skills"`
	CreatedAt       time.Time       `json:"created_at"`
}

// JobSummary is the listing shape returned by GET /api/matching/jobs
type JobSummary struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	RequiredSkills []string `json:"required_skills"`
	MinYears       int      `json:"min_years_experience"`
}

// Summary projects the job into its listing shape
func (j *Job) Summary() JobSummary {
	required := make([]string, 0, len(j.Skills))
	for _, s := range j.Skills {
		if s.IsRequired {
			required = append(required, s.Name)
		}
	}
	return JobSummary{
		ID:             j.ID,
		Title:          j.Title,
		Company:        j.Company,
		Location:       j.Location,
		RequiredSkills: required,
		MinYears:       j.MinYears,
	}
}
