package scoring

import (
	"testing"

	"github.com/talentbrains/matching-engine/internal/models"
)

func TestExperienceScore(t *testing.T) {
	cases := []struct {
		name        string
		talentLevel models.ExperienceLevel
		talentYears int
		jobLevel    models.ExperienceLevel
		jobMinYears int
		want        float64
	}{
		{"exact match", models.LevelSenior, 6, models.LevelSenior, 5, 100},
		{"overqualified rank", models.LevelLead, 10, models.LevelMid, 3, 100},
		{"one rank under", models.LevelMid, 5, models.LevelSenior, 0, 70},
		{"two ranks under", models.LevelEntry, 1, models.LevelSenior, 0, 40},
		{"three ranks under", models.LevelEntry, 0, models.LevelLead, 0, 10},
		{"years shortfall only", models.LevelSenior, 3, models.LevelSenior, 5, 90},
		{"rank and years shortfall", models.LevelMid, 2, models.LevelSenior, 5, 55},
		{"floored at zero", models.LevelEntry, 0, models.LevelLead, 20, 0},
		{"no minimum years", models.LevelMid, 0, models.LevelMid, 0, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			talent := &models.Talent{
				ExperienceLevel:   tc.talentLevel,
				YearsOfExperience: tc.talentYears,
			}
			job := &models.Job{
				ExperienceLevel: tc.jobLevel,
				MinYears:        tc.jobMinYears,
			}

			if got := ExperienceScore(talent, job); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestExperienceScoreUnknownLevelRanksAsMid(t *testing.T) {
	talent := &models.Talent{ExperienceLevel: "wizard"}
	job := &models.Job{ExperienceLevel: models.LevelSenior}

	if got := ExperienceScore(talent, job); got != 70 {
		t.Errorf("unknown level should rank as mid, got %v", got)
	}
}
