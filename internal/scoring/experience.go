package scoring

import (
	"github.com/talentbrains/matching-engine/internal/models"
)

const (
	rankShortfallPenalty = 30 // per seniority level under the requirement
	yearShortfallPenalty = 5  // per year under an explicit minimum
)

// ExperienceScore compares the talent's seniority band and years against
// the job's requirements. 100 when both the rank and any stated minimum
// years are satisfied; a graduated penalty applies per rank level and per
// year of shortfall, floored at 0. Overqualification never penalizes.
func ExperienceScore(talent *models.Talent, job *models.Job) float64 {
	score := 100.0

	if shortfall := job.ExperienceLevel.Rank() - talent.ExperienceLevel.Rank(); shortfall > 0 {
		score -= float64(shortfall * rankShortfallPenalty)
	}

	if job.MinYears > 0 && talent.YearsOfExperience < job.MinYears {
		score -= float64((job.MinYears - talent.YearsOfExperience) * yearShortfallPenalty)
	}

	if score < 0 {
		return 0
	}
	return score
}
