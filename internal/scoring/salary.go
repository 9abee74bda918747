package scoring

import (
	"math"

	"github.com/talentbrains/matching-engine/internal/models"
)

// SalaryScore measures how much of the talent's stated annual expectation
// falls inside the job's offered range. Full score when the job covers the
// talent's whole range, degrading linearly with the covered fraction, zero
// when the ranges are disjoint. A bound missing on one end of a stated
// range extends unbounded in the favorable direction.
//
// Returns nil when either party states no annual range at all; the
// aggregator redistributes the salary weight in that case. Hourly-only
// talents count as stating no range: job postings are annualized and the
// two are not directly comparable.
func SalaryScore(talent *models.Talent, job *models.Job) *float64 {
	talentMin, talentMax, ok := expectedRange(talent.SalaryExpectationMin, talent.SalaryExpectationMax)
	if !ok {
		return nil
	}
	jobMin, jobMax, ok := expectedRange(job.SalaryMin, job.SalaryMax)
	if !ok {
		return nil
	}

	overlapLo := math.Max(talentMin, jobMin)
	overlapHi := math.Min(talentMax, jobMax)
	if overlapLo > overlapHi {
		return ptr(0.0)
	}

	talentSpan := talentMax - talentMin
	if talentSpan <= 0 || math.IsInf(talentSpan, 1) {
		// Point expectation inside the job range, or an unbounded talent
		// range that overlaps at all: full score.
		return ptr(100.0)
	}

	return ptr(100 * (overlapHi - overlapLo) / talentSpan)
}

// expectedRange resolves a (min, max) pair of optional bounds. A single
// stated bound leaves the other end unbounded; two nils mean no range.
func expectedRange(min, max *float64) (float64, float64, bool) {
	if min == nil && max == nil {
		return 0, 0, false
	}
	lo := math.Inf(-1)
	hi := math.Inf(1)
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	return lo, hi, true
}

func ptr(v float64) *float64 { return &v }
