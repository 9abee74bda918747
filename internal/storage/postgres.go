package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentbrains/matching-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}


const talentColumns = `
	t.id, t.profile_id, t.full_name, t.title, COALESCE(t.location, ''),
	t.remote_preference, t.experience_level, t.years_of_experience,
	t.hourly_rate_min, t.hourly_rate_max,
	t.salary_expectation_min, t.salary_expectation_max,
	t.availability_status, t.created_at`

// GetTalent retrieves a talent with its skills. Returns (nil, nil) when
// the id is unknown.
func (r *PostgresRepository) GetTalent(ctx context.Context, id string) (*models.Talent, error) {
	query := `SELECT ` + talentColumns + ` FROM talents t WHERE t.id = $1`

	t, err := scanTalent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get talent: %w", err)
	}

	skills, err := r.talentSkills(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Skills = skills[t.ID]
	return t, nil
}

// ListAvailableTalents returns talents open to matching, newest first,
// capped at limit. Skills are loaded in one batch query.
func (r *PostgresRepository) ListAvailableTalents(ctx context.Context, limit int) ([]*models.Talent, error) {
	query := `SELECT ` + talentColumns + `
		FROM talents t
		WHERE t.availability_status <> 'not_looking'
		ORDER BY t.created_at DESC, t.id
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list talents: %w", err)
	}
	defer rows.Close()

	var talents []*models.Talent
	var ids []string
	for rows.Next() {
		t, err := scanTalent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan talent: %w", err)
		}
		talents = append(talents, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skills, err := r.talentSkills(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range talents {
		t.Skills = skills[t.ID]
	}
	return talents, nil
}

// CountTalents returns the total number of talent profiles
func (r *PostgresRepository) CountTalents(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM talents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count talents: %w", err)
	}
	return n, nil
}

func scanTalent(row pgx.Row) (*models.Talent, error) {
	var t models.Talent
	var level, availability string
	err := row.Scan(
		&t.ID,
		&t.ProfileID,
		&t.FullName,
		&t.Title,
		&t.Location,
		&t.RemotePreference,
		&level,
		&t.YearsOfExperience,
		&t.HourlyRateMin,
		&t.HourlyRateMax,
		&t.SalaryExpectationMin,
		&t.SalaryExpectationMax,
		&availability,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ExperienceLevel = models.ExperienceLevel(level)
	t.Availability = models.AvailabilityStatus(availability)
	return &t, nil
}

// talentSkills batch-loads skills for the given talent ids
func (r *PostgresRepository) talentSkills(ctx context.Context, ids []string) (map[string][]models.TalentSkill, error) {
	out := make(map[string][]models.TalentSkill, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT talent_id, skill_id, name, proficiency_level, years_of_experience, is_primary
		 FROM talent_skills
		 WHERE talent_id = ANY($1)
		 ORDER BY talent_id, is_primary DESC, name`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load talent skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var talentID string
		var s models.TalentSkill
		if err := rows.Scan(&talentID, &s.SkillID, &s.Name, &s.Proficiency, &s.Years, &s.IsPrimary); err != nil {
			return nil, fmt.Errorf("failed to scan talent skill: %w", err)
		}
		out[talentID] = append(out[talentID], s)
	}
	return out, rows.Err()
}


const jobColumns = `
	j.id, j.company_id, j.company, j.title, COALESCE(j.description, ''),
	COALESCE(j.location, ''), j.employment_type, j.remote_allowed,
	j.experience_level, j.min_years_experience, j.max_years_experience,
	j.salary_min, j.salary_max, COALESCE(j.currency, ''), j.status, j.created_at`

// GetJob retrieves a job with its skills. Returns (nil, nil) when the id
// is unknown.
func (r *PostgresRepository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.id = $1`

	j, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	skills, err := r.jobSkills(ctx, []string{j.ID})
	if err != nil {
		return nil, err
	}
	j.Skills = skills[j.ID]
	return j, nil
}

// ListActiveJobs returns active postings, newest first, capped at limit
func (r *PostgresRepository) ListActiveJobs(ctx context.Context, limit int) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs j
		WHERE j.status = 'active'
		ORDER BY j.created_at DESC, j.id
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	var ids []string
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
		ids = append(ids, j.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skills, err := r.jobSkills(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		j.Skills = skills[j.ID]
	}
	return jobs, nil
}

// CountJobs returns the total number of job postings
func (r *PostgresRepository) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	var level, status string
	err := row.Scan(
		&j.ID,
		&j.CompanyID,
		&j.Company,
		&j.Title,
		&j.Description,
		&j.Location,
		&j.EmploymentType,
		&j.RemoteAllowed,
		&level,
		&j.MinYears,
		&j.MaxYears,
		&j.SalaryMin,
		&j.SalaryMax,
		&j.Currency,
		&status,
		&j.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.ExperienceLevel = models.ExperienceLevel(level)
	j.Status = models.JobStatus(status)
	return &j, nil
}

// jobSkills batch-loads skills for the given job ids
func (r *PostgresRepository) jobSkills(ctx context.Context, ids []string) (map[string][]models.JobSkill, error) {
	out := make(map[string][]models.JobSkill, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT job_id, skill_id, name, proficiency_level, is_required
		 FROM job_skills
		 WHERE job_id = ANY($1)
		 ORDER BY job_id, is_required DESC, name`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load job skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var jobID string
		var s models.JobSkill
		if err := rows.Scan(&jobID, &s.SkillID, &s.Name, &s.Proficiency, &s.IsRequired); err != nil {
			return nil, fmt.Errorf("failed to scan job skill: %w", err)
		}
		out[jobID] = append(out[jobID], s)
	}
	return out, rows.Err()
}


// UpsertMatches writes computed match results, keyed (talent_id, job_id).
// Re-running a computation overwrites the previous row, so writes are
// idempotent.
func (r *PostgresRepository) UpsertMatches(ctx context.Context, records []models.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO matches (talent_id, job_id, match_score, skill_match_score,
				experience_match_score, location_match_score, salary_match_score,
				matched_skills, missing_skills, reason, computed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (talent_id, job_id) DO UPDATE SET
				match_score = EXCLUDED.match_score,
				skill_match_score = EXCLUDED.skill_match_score,
				experience_match_score = EXCLUDED.experience_match_score,
				location_match_score = EXCLUDED.location_match_score,
				salary_match_score = EXCLUDED.salary_match_score,
				matched_skills = EXCLUDED.matched_skills,
				missing_skills = EXCLUDED.missing_skills,
				reason = EXCLUDED.reason,
				computed_at = EXCLUDED.computed_at`,
			rec.TalentID,
			rec.JobID,
			rec.Result.MatchScore,
			rec.Result.SkillMatchScore,
			rec.Result.ExperienceMatchScore,
			rec.Result.LocationMatchScore,
			rec.Result.SalaryMatchScore,
			rec.Result.MatchedSkills,
			rec.Result.MissingSkills,
			rec.Result.Reason,
			rec.ComputedAt,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert match: %w", err)
		}
	}
	return nil
}

// MatchesForTalent reads previously stored matches for a talent, best
// first. Used as a degraded fallback when fresh computation is impossible.
func (r *PostgresRepository) MatchesForTalent(ctx context.Context, talentID string, limit int) ([]models.MatchRecord, error) {
	return r.storedMatches(ctx, `talent_id`, talentID, limit)
}

// MatchesForJob reads previously stored matches for a job, best first
func (r *PostgresRepository) MatchesForJob(ctx context.Context, jobID string, limit int) ([]models.MatchRecord, error) {
	return r.storedMatches(ctx, `job_id`, jobID, limit)
}

func (r *PostgresRepository) storedMatches(ctx context.Context, keyColumn, keyValue string, limit int) ([]models.MatchRecord, error) {
	query := fmt.Sprintf(
		`SELECT talent_id, job_id, match_score, skill_match_score,
			experience_match_score, location_match_score, salary_match_score,
			matched_skills, missing_skills, reason, computed_at
		 FROM matches
		 WHERE %s = $1
		 ORDER BY match_score DESC, computed_at DESC
		 LIMIT $2`, keyColumn)

	rows, err := r.pool.Query(ctx, query, keyValue, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored matches: %w", err)
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var rec models.MatchRecord
		if err := rows.Scan(
			&rec.TalentID,
			&rec.JobID,
			&rec.Result.MatchScore,
			&rec.Result.SkillMatchScore,
			&rec.Result.ExperienceMatchScore,
			&rec.Result.LocationMatchScore,
			&rec.Result.SalaryMatchScore,
			&rec.Result.MatchedSkills,
			&rec.Result.MissingSkills,
			&rec.Result.Reason,
			&rec.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stored match: %w", err)
		}
		if keyColumn == "talent_id" {
			rec.Result.JobID = rec.JobID
		} else {
			rec.Result.TalentID = rec.TalentID
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteMatchesBefore removes stored matches computed before cutoff.
// Returns the number of rows deleted.
func (r *PostgresRepository) DeleteMatchesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM matches WHERE computed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale matches: %w", err)
	}
	return tag.RowsAffected(), nil
}


// GetClientByAPIKey looks up an API client by key. Returns (nil, nil) when
// the key is unknown.
func (r *PostgresRepository) GetClientByAPIKey(ctx context.Context, apiKey string) (*models.APIClient, error) {
	var c models.APIClient
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, api_key, is_active, permissions, created_at, last_used_at
		 FROM api_clients
		 WHERE api_key = $1`,
		apiKey,
	).Scan(&c.ID, &c.Name, &c.APIKey, &c.IsActive, &c.Permissions, &c.CreatedAt, &c.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}
	return &c, nil
}

// UpdateClientLastUsed records the last use of an API key
func (r *PostgresRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`, apiKey)
	if err != nil {
		return fmt.Errorf("failed to update last_used_at: %w", err)
	}
	return nil
}
