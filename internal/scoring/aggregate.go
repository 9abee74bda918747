package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Factor weights for the composite score. When salary is inapplicable its
// weight is redistributed proportionally so the combination stays convex.
const (
	weightSkills     = 0.40
	weightExperience = 0.30
	weightLocation   = 0.20
	weightSalary     = 0.10
)

// Aggregate combines the sub-scores into the composite 0-100 match score.
// salary may be nil; the remaining weights are then scaled by 1/(1-0.10).
func Aggregate(skills, experience, location float64, salary *float64) float64 {
	score := skills*weightSkills + experience*weightExperience + location*weightLocation
	if salary != nil {
		score += *salary * weightSalary
	} else {
		score /= 1 - weightSalary
	}
	return clampScore(score)
}

// Round2 rounds a score to two decimals, the precision used on the wire
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// BuildReason produces the short human-readable summary shown on match
// cards, highlighting the strongest and weakest factors.
func BuildReason(skills, experience, location float64, matched, missing []string) string {
	var reasons []string

	switch {
	case skills >= 80:
		reasons = append(reasons, fmt.Sprintf("Strong skill match (%d skills)", len(matched)))
	case skills >= 60:
		reasons = append(reasons, fmt.Sprintf("Good skill match (%d skills)", len(matched)))
	case len(missing) > 0:
		reasons = append(reasons, fmt.Sprintf("Missing %d required skills", len(missing)))
	}

	if experience >= 80 {
		reasons = append(reasons, "Experience level matches well")
	} else if experience < 50 {
		reasons = append(reasons, "Experience level mismatch")
	}

	if location >= 80 {
		reasons = append(reasons, "Location compatible")
	} else if location < 50 {
		reasons = append(reasons, "Location may be a challenge")
	}

	if len(reasons) == 0 {
		return "Partial match"
	}
	return strings.Join(reasons, " • ")
}
