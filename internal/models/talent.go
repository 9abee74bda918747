package models

import (
	"time"
)

// ExperienceLevel is the seniority band declared on talents and jobs
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
	LevelLead   ExperienceLevel = "lead"
)

// Rank maps the level to an ordinal used by the experience scorer.
// Unknown levels rank as mid.
func (l ExperienceLevel) Rank() int {
	switch l {
	case LevelEntry:
		return 1
	case LevelMid:
		return 2
	case LevelSenior:
		return 3
	case LevelLead:
		return 4
	default:
		return 2
	}
}

// AvailabilityStatus represents whether a talent is open to matching
type AvailabilityStatus string

const (
	AvailabilityOpen       AvailabilityStatus = "open"
	AvailabilityPassive    AvailabilityStatus = "passive"
	AvailabilityNotLooking AvailabilityStatus = "not_looking"
)

// IsMatchable returns true if the talent should appear in job-side rankings
func (a AvailabilityStatus) IsMatchable() bool {
	return a != AvailabilityNotLooking
}

// TalentSkill is one skill declared on a talent profile
type TalentSkill struct {
	SkillID     string `json:"skill_id"`
	Name        string `json:"name"`
	Proficiency int    `json:"proficiency_level"` // 1-5
	Years       int    `json:"years_of_experience"`
	IsPrimary   bool   `json:"is_primary"`
}

// Talent is a candidate profile seeking jobs
type Talent struct {
	ID                   string             `json:"id"`
	ProfileID            string             `json:"profile_id,omitempty"`
	FullName             string             `json:"full_name"`
	Title                string             `json:"title"`
	Location             string             `json:"location"`
	RemotePreference     bool               `json:"remote_preference"`
	ExperienceLevel      ExperienceLevel    `json:"experience_level"`
	YearsOfExperience    int                `json:"years_of_experience"`
	HourlyRateMin        *float64           `json:"hourly_rate_min,omitempty"`
	HourlyRateMax        *float64           `json:"hourly_rate_max,omitempty"`
	SalaryExpectationMin *float64           `json:"salary_expectation_min,omitempty"`
	SalaryExpectationMax *float64           `json:"salary_expectation_max,omitempty"`
	Availability         AvailabilityStatus `json:"availability_status"`
	Skills               []TalentSkill      `json:"skills"`
	CreatedAt            time.Time          `json:"created_at"`
}

// TalentSummary is the listing shape returned by GET /api/matching/talents
type TalentSummary struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Title             string   `json:"title"`
	Location          string   `json:"location"`
	Skills            []string `json:"skills"`
	YearsOfExperience int      `json:"years_of_experience"`
}

// Summary projects the talent into its listing shape
func (t *Talent) Summary() TalentSummary {
	skills := make([]string, 0, len(t.Skills))
	for _, s := range t.Skills {
		skills = append(skills, s.Name)
	}
	return TalentSummary{
		ID:                t.ID,
		Name:              t.FullName,
		Title:             t.Title,
		Location:          t.Location,
		Skills:            skills,
		YearsOfExperience: t.YearsOfExperience,
	}
}
