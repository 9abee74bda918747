package scoring

import (
	"strings"

	"github.com/talentbrains/matching-engine/internal/models"
)

const (
	requiredWeight  = 2.0
	preferredWeight = 1.0
)

// SkillScore compares a talent's skill set against a job's demanded skills.
// Required skills weigh double preferred ones. A matched skill earns credit
// proportional to how closely the talent's proficiency meets the requested
// level: full credit at or above the requirement, linear partial credit
// below it, zero when the skill is absent.
//
// Returns the 0-100 score, the matched skill names (job declaration order),
// and the required job skills the talent lacks.
func SkillScore(talent []models.TalentSkill, job []models.JobSkill) (float64, []string, []string) {
	matched := make([]string, 0, len(job))
	missing := make([]string, 0)

	// No demands means nothing to fail.
	if len(job) == 0 {
		return 100, matched, missing
	}

	byName := make(map[string]models.TalentSkill, len(talent))
	for _, s := range talent {
		byName[normalizeSkill(s.Name)] = s
	}

	var earned, total float64
	for _, req := range job {
		weight := preferredWeight
		if req.IsRequired {
			weight = requiredWeight
		}
		total += weight

		ts, ok := byName[normalizeSkill(req.Name)]
		if !ok {
			if req.IsRequired {
				missing = append(missing, req.Name)
			}
			continue
		}

		matched = append(matched, req.Name)
		earned += weight * proficiencyCredit(ts.Proficiency, req.Proficiency)
	}

	return 100 * earned / total, matched, missing
}

// proficiencyCredit returns the fraction of credit for a matched skill:
// 1.0 when the talent meets or exceeds the requested level, talent/required
// otherwise. A job that requests no particular level grants full credit.
func proficiencyCredit(talentLevel, requiredLevel int) float64 {
	requiredLevel = clampLevel(requiredLevel)
	talentLevel = clampLevel(talentLevel)
	if requiredLevel == 0 || talentLevel >= requiredLevel {
		return 1.0
	}
	return float64(talentLevel) / float64(requiredLevel)
}

// clampLevel bounds a proficiency level to 0..5; zero means unspecified
func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 5 {
		return 5
	}
	return level
}

// normalizeSkill makes skill names comparable across profiles and postings
func normalizeSkill(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
