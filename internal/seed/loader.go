// Package seed loads demo talents and jobs from YAML fixtures and inserts
// them on startup. Used in dev environments so the matching API has data
// to rank without the production profile pipeline.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/talentbrains/matching-engine/internal/models"
)

// SkillFixture is one skill entry on a talent or job fixture
type SkillFixture struct {
	Name        string `yaml:"name"`
	Proficiency int    `yaml:"proficiency_level"`
	Years       int    `yaml:"years_of_experience"`
	IsPrimary   bool   `yaml:"is_primary"`
	IsRequired  *bool  `yaml:"is_required"` // jobs only; defaults to true
}

// TalentFixture describes one demo talent profile
type TalentFixture struct {
	ID                   string         `yaml:"id"`
	FullName             string         `yaml:"full_name"`
	Title                string         `yaml:"title"`
	Location             string         `yaml:"location"`
	RemotePreference     bool           `yaml:"remote_preference"`
	ExperienceLevel      string         `yaml:"experience_level"`
	YearsOfExperience    int            `yaml:"years_of_experience"`
	HourlyRateMin        *float64       `yaml:"hourly_rate_min"`
	HourlyRateMax        *float64       `yaml:"hourly_rate_max"`
	SalaryExpectationMin *float64       `yaml:"salary_expectation_min"`
	SalaryExpectationMax *float64       `yaml:"salary_expectation_max"`
	Availability         string         `yaml:"availability_status"`
	Skills               []SkillFixture `yaml:"skills"`
}

// JobFixture describes one demo job posting
type JobFixture struct {
	ID              string         `yaml:"id"`
	Company         string         `yaml:"company"`
	Title           string         `yaml:"title"`
	Description     string         `yaml:"description"`
	Location        string         `yaml:"location"`
	EmploymentType  string         `yaml:"employment_type"`
	RemoteAllowed   bool           `yaml:"remote_allowed"`
	ExperienceLevel string         `yaml:"experience_level"`
	MinYears        int            `yaml:"min_years_experience"`
	MaxYears        *int           `yaml:"max_years_experience"`
	SalaryMin       *float64       `yaml:"salary_min"`
	SalaryMax       *float64       `yaml:"salary_max"`
	Currency        string         `yaml:"currency"`
	Status          string         `yaml:"status"`
	Skills          []SkillFixture `yaml:"skills"`
}

// Fixture is the content of one or more seed files merged together
type Fixture struct {
	Talents []TalentFixture `yaml:"talents"`
	Jobs    []JobFixture    `yaml:"jobs"`
}

var validLevels = map[string]bool{
	string(models.LevelEntry):  true,
	string(models.LevelMid):    true,
	string(models.LevelSenior): true,
	string(models.LevelLead):   true,
}

var validAvailability = map[string]bool{
	string(models.AvailabilityOpen):       true,
	string(models.AvailabilityPassive):    true,
	string(models.AvailabilityNotLooking): true,
}

// LoadDir parses every .yaml/.yml file in dir (lexical order) and merges
// them into a single validated Fixture.
func LoadDir(dir string) (*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	merged := &Fixture{}
	for _, name := range files {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file %s: %w", name, err)
		}

		var f Fixture
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("failed to parse seed file %s: %w", name, err)
		}

		merged.Talents = append(merged.Talents, f.Talents...)
		merged.Jobs = append(merged.Jobs, f.Jobs...)
	}

	if err := merged.validate(); err != nil {
		return nil, err
	}

	merged.fillDefaults()
	return merged, nil
}

func (f *Fixture) validate() error {
	for i, t := range f.Talents {
		if t.FullName == "" || t.Title == "" {
			return fmt.Errorf("talent fixture %d: full_name and title are required", i)
		}
		if t.ExperienceLevel != "" && !validLevels[t.ExperienceLevel] {
			return fmt.Errorf("talent fixture %q: invalid experience_level %q", t.FullName, t.ExperienceLevel)
		}
		if t.Availability != "" && !validAvailability[t.Availability] {
			return fmt.Errorf("talent fixture %q: invalid availability_status %q", t.FullName, t.Availability)
		}
		for _, s := range t.Skills {
			if s.Name == "" {
				return fmt.Errorf("talent fixture %q: skill with empty name", t.FullName)
			}
			if s.Proficiency < 0 || s.Proficiency > 5 {
				return fmt.Errorf("talent fixture %q: skill %q proficiency out of range", t.FullName, s.Name)
			}
		}
	}

	for i, j := range f.Jobs {
		if j.Company == "" || j.Title == "" {
			return fmt.Errorf("job fixture %d: company and title are required", i)
		}
		if j.ExperienceLevel != "" && !validLevels[j.ExperienceLevel] {
			return fmt.Errorf("job fixture %q: invalid experience_level %q", j.Title, j.ExperienceLevel)
		}
		for _, s := range j.Skills {
			if s.Name == "" {
				return fmt.Errorf("job fixture %q: skill with empty name", j.Title)
			}
			if s.Proficiency < 0 || s.Proficiency > 5 {
				return fmt.Errorf("job fixture %q: skill %q proficiency out of range", j.Title, s.Name)
			}
		}
	}

	return nil
}

// fillDefaults assigns ids to fixtures lacking one and normalizes enums
func (f *Fixture) fillDefaults() {
	for i := range f.Talents {
		t := &f.Talents[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.ExperienceLevel == "" {
			t.ExperienceLevel = string(models.LevelMid)
		}
		if t.Availability == "" {
			t.Availability = string(models.AvailabilityOpen)
		}
	}

	for i := range f.Jobs {
		j := &f.Jobs[i]
		if j.ID == "" {
			j.ID = uuid.NewString()
		}
		if j.ExperienceLevel == "" {
			j.ExperienceLevel = string(models.LevelMid)
		}
		if j.EmploymentType == "" {
			j.EmploymentType = "full_time"
		}
		if j.Status == "" {
			j.Status = string(models.JobActive)
		}
	}
}

// ApplyDSN connects with the given DSN and inserts the fixtures. Records
// whose id already exists are skipped, so seeding is idempotent across
// restarts.
func ApplyDSN(ctx context.Context, dsn string, f *Fixture) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	return Apply(ctx, pool, f)
}

// Apply inserts the fixtures using the given pool
func Apply(ctx context.Context, pool *pgxpool.Pool, f *Fixture) error {
	var inserted, skipped int

	for _, t := range f.Talents {
		tag, err := pool.Exec(ctx,
			`INSERT INTO talents (id, profile_id, full_name, title, location,
				remote_preference, experience_level, years_of_experience,
				hourly_rate_min, hourly_rate_max,
				salary_expectation_min, salary_expectation_max, availability_status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 ON CONFLICT (id) DO NOTHING`,
			t.ID, uuid.NewString(), t.FullName, t.Title, t.Location,
			t.RemotePreference, t.ExperienceLevel, t.YearsOfExperience,
			t.HourlyRateMin, t.HourlyRateMax,
			t.SalaryExpectationMin, t.SalaryExpectationMax, t.Availability,
		)
		if err != nil {
			return fmt.Errorf("failed to seed talent %q: %w", t.FullName, err)
		}
		if tag.RowsAffected() == 0 {
			skipped++
			continue
		}
		inserted++

		for _, s := range t.Skills {
			if _, err := pool.Exec(ctx,
				`INSERT INTO talent_skills (talent_id, skill_id, name, proficiency_level, years_of_experience, is_primary)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (talent_id, skill_id) DO NOTHING`,
				t.ID, uuid.NewString(), s.Name, defaultProficiency(s.Proficiency), s.Years, s.IsPrimary,
			); err != nil {
				return fmt.Errorf("failed to seed skill %q for talent %q: %w", s.Name, t.FullName, err)
			}
		}
	}

	for _, j := range f.Jobs {
		tag, err := pool.Exec(ctx,
			`INSERT INTO jobs (id, company_id, company, title, description, location,
				employment_type, remote_allowed, experience_level,
				min_years_experience, max_years_experience,
				salary_min, salary_max, currency, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			 ON CONFLICT (id) DO NOTHING`,
			j.ID, uuid.NewString(), j.Company, j.Title, j.Description, j.Location,
			j.EmploymentType, j.RemoteAllowed, j.ExperienceLevel,
			j.MinYears, j.MaxYears,
			j.SalaryMin, j.SalaryMax, j.Currency, j.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to seed job %q: %w", j.Title, err)
		}
		if tag.RowsAffected() == 0 {
			skipped++
			continue
		}
		inserted++

		for _, s := range j.Skills {
			required := true
			if s.IsRequired != nil {
				required = *s.IsRequired
			}
			if _, err := pool.Exec(ctx,
				`INSERT INTO job_skills (job_id, skill_id, name, proficiency_level, is_required)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (job_id, skill_id) DO NOTHING`,
				j.ID, uuid.NewString(), s.Name, defaultProficiency(s.Proficiency), required,
			); err != nil {
				return fmt.Errorf("failed to seed skill %q for job %q: %w", s.Name, j.Title, err)
			}
		}
	}

	slog.Info("seed applied", "inserted", inserted, "skipped", skipped)
	return nil
}

func defaultProficiency(p int) int {
	if p == 0 {
		return 3
	}
	return p
}
