package scoring

import (
	"strings"

	"github.com/talentbrains/matching-engine/internal/models"
)

const (
	locationFull    = 100.0
	locationPartial = 50.0 // one side flexible, or location data missing
)

// LocationScore compares geography and remote preference. Full score when
// both sides are remote-compatible or the normalized locations match;
// partial when exactly one side is flexible; zero when neither remote nor
// location lines up. Missing location text on either side degrades to the
// partial score instead of failing the pair.
func LocationScore(talent *models.Talent, job *models.Job) float64 {
	if job.RemoteAllowed && talent.RemotePreference {
		return locationFull
	}

	talentLoc := normalizeLocation(talent.Location)
	jobLoc := normalizeLocation(job.Location)

	if talentLoc == "" || jobLoc == "" {
		return locationPartial
	}

	if sameLocation(talentLoc, jobLoc) {
		return locationFull
	}

	// Locations differ; one flexible side still salvages a partial.
	if job.RemoteAllowed || talent.RemotePreference {
		return locationPartial
	}

	return 0
}

// sameLocation treats containment as a match so "Berlin" lines up with
// "Berlin, Germany"
func sameLocation(a, b string) bool {
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func normalizeLocation(loc string) string {
	return strings.ToLower(strings.TrimSpace(loc))
}
