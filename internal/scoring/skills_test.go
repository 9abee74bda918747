package scoring

import (
	"testing"

	"github.com/talentbrains/matching-engine/internal/models"
)

func TestSkillScoreNoDemands(t *testing.T) {
	score, matched, missing := SkillScore(nil, nil)
	if score != 100 {
		t.Errorf("expected 100 for a job with no skill demands, got %v", score)
	}
	if len(matched) != 0 || len(missing) != 0 {
		t.Errorf("expected empty matched/missing, got %v / %v", matched, missing)
	}
}

func TestSkillScorePartialProficiency(t *testing.T) {
	talent := []models.TalentSkill{
		{Name: "React", Proficiency: 4},
		{Name: "Node.js", Proficiency: 3},
	}
	job := []models.JobSkill{
		{Name: "React", Proficiency: 3, IsRequired: true},
		{Name: "Node.js", Proficiency: 4, IsRequired: true},
	}

	// React exceeds the requested level (full credit); Node.js earns 3/4.
	// (2.0 + 2.0*0.75) / 4.0 = 87.5
	score, matched, missing := SkillScore(talent, job)
	if score != 87.5 {
		t.Errorf("expected 87.5, got %v", score)
	}
	if len(matched) != 2 {
		t.Errorf("expected both skills matched, got %v", matched)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing skills, got %v", missing)
	}
}

func TestSkillScoreMissingRequired(t *testing.T) {
	talent := []models.TalentSkill{
		{Name: "Go", Proficiency: 5},
	}
	job := []models.JobSkill{
		{Name: "Go", Proficiency: 3, IsRequired: true},
		{Name: "Kubernetes", Proficiency: 3, IsRequired: true},
		{Name: "Terraform", Proficiency: 2, IsRequired: false},
	}

	score, matched, missing := SkillScore(talent, job)

	// earned 2.0 of total 5.0
	if score != 40 {
		t.Errorf("expected 40, got %v", score)
	}
	if len(matched) != 1 || matched[0] != "Go" {
		t.Errorf("unexpected matched skills: %v", matched)
	}
	// Only required absences are reported as missing.
	if len(missing) != 1 || missing[0] != "Kubernetes" {
		t.Errorf("expected only Kubernetes missing, got %v", missing)
	}
}

func TestSkillScoreRequiredWeighsDouble(t *testing.T) {
	job := []models.JobSkill{
		{Name: "Go", Proficiency: 3, IsRequired: true},
		{Name: "Terraform", Proficiency: 3, IsRequired: false},
	}

	onlyRequired, _, _ := SkillScore([]models.TalentSkill{{Name: "Go", Proficiency: 3}}, job)
	onlyPreferred, _, _ := SkillScore([]models.TalentSkill{{Name: "Terraform", Proficiency: 3}}, job)

	if onlyRequired <= onlyPreferred {
		t.Errorf("required skill should earn more than preferred: %v vs %v", onlyRequired, onlyPreferred)
	}
	if onlyRequired != 100*2.0/3.0 {
		t.Errorf("unexpected required-only score: %v", onlyRequired)
	}
}

func TestSkillScoreNameNormalization(t *testing.T) {
	talent := []models.TalentSkill{{Name: "  postgresql ", Proficiency: 4}}
	job := []models.JobSkill{{Name: "PostgreSQL", Proficiency: 3, IsRequired: true}}

	score, matched, _ := SkillScore(talent, job)
	if score != 100 {
		t.Errorf("expected case/whitespace-insensitive match, got %v", score)
	}
	// Matched names keep the job's spelling.
	if len(matched) != 1 || matched[0] != "PostgreSQL" {
		t.Errorf("unexpected matched skills: %v", matched)
	}
}

func TestSkillScoreUnspecifiedRequirementLevel(t *testing.T) {
	talent := []models.TalentSkill{{Name: "Go", Proficiency: 1}}
	job := []models.JobSkill{{Name: "Go", Proficiency: 0, IsRequired: true}}

	score, _, _ := SkillScore(talent, job)
	if score != 100 {
		t.Errorf("no requested level should grant full credit, got %v", score)
	}
}

func TestProficiencyCreditClamping(t *testing.T) {
	if got := proficiencyCredit(7, 9); got != 1.0 {
		t.Errorf("out-of-range levels should clamp to 5/5, got %v", got)
	}
	if got := proficiencyCredit(-1, 4); got != 0 {
		t.Errorf("negative level should clamp to 0, got %v", got)
	}
}
