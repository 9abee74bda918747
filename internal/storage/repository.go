package storage

import (
	"context"
	"time"

	"github.com/talentbrains/matching-engine/internal/models"
)

// Repository defines persistence for the matching engine. Reads of a
// single record return (nil, nil) when the id is unknown.
type Repository interface {
	// Talents
	GetTalent(ctx context.Context, id string) (*models.Talent, error)
	ListAvailableTalents(ctx context.Context, limit int) ([]*models.Talent, error)
	CountTalents(ctx context.Context) (int, error)

	// Jobs
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListActiveJobs(ctx context.Context, limit int) ([]*models.Job, error)
	CountJobs(ctx context.Context) (int, error)

	// Match cache (matches table; idempotent upserts keyed talent_id+job_id)
	UpsertMatches(ctx context.Context, records []models.MatchRecord) error
	MatchesForTalent(ctx context.Context, talentID string, limit int) ([]models.MatchRecord, error)
	MatchesForJob(ctx context.Context, jobID string, limit int) ([]models.MatchRecord, error)
	DeleteMatchesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// API clients
	GetClientByAPIKey(ctx context.Context, apiKey string) (*models.APIClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
