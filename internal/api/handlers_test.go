package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talentbrains/matching-engine/internal/config"
	"github.com/talentbrains/matching-engine/internal/matching"
	"github.com/talentbrains/matching-engine/internal/models"
	"github.com/talentbrains/matching-engine/internal/scoring"
)

// fakeRepo is an in-memory Repository for handler tests
type fakeRepo struct {
	talents map[string]*models.Talent
	jobs    map[string]*models.Job
	clients map[string]*models.APIClient

	upserted []models.MatchRecord
	pingErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		talents: make(map[string]*models.Talent),
		jobs:    make(map[string]*models.Job),
		clients: make(map[string]*models.APIClient),
	}
}

func (f *fakeRepo) GetTalent(_ context.Context, id string) (*models.Talent, error) {
	return f.talents[id], nil
}

func (f *fakeRepo) ListAvailableTalents(_ context.Context, limit int) ([]*models.Talent, error) {
	out := make([]*models.Talent, 0, len(f.talents))
	for _, t := range f.talents {
		if t.Availability.IsMatchable() {
			out = append(out, t)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) CountTalents(_ context.Context) (int, error) {
	return len(f.talents), nil
}

func (f *fakeRepo) GetJob(_ context.Context, id string) (*models.Job, error) {
	return f.jobs[id], nil
}

func (f *fakeRepo) ListActiveJobs(_ context.Context, limit int) ([]*models.Job, error) {
	out := make([]*models.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		if j.Status.IsOpen() {
			out = append(out, j)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) CountJobs(_ context.Context) (int, error) {
	return len(f.jobs), nil
}

func (f *fakeRepo) UpsertMatches(_ context.Context, records []models.MatchRecord) error {
	f.upserted = append(f.upserted, records...)
	return nil
}

func (f *fakeRepo) MatchesForTalent(_ context.Context, _ string, _ int) ([]models.MatchRecord, error) {
	return nil, nil
}

func (f *fakeRepo) MatchesForJob(_ context.Context, _ string, _ int) ([]models.MatchRecord, error) {
	return nil, nil
}

func (f *fakeRepo) DeleteMatchesBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) GetClientByAPIKey(_ context.Context, apiKey string) (*models.APIClient, error) {
	return f.clients[apiKey], nil
}

func (f *fakeRepo) UpdateClientLastUsed(_ context.Context, _ string) error { return nil }

func (f *fakeRepo) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeRepo) Close() error { return nil }

func newTestServer(t *testing.T, repo *fakeRepo, authEnabled bool) *Server {
	t.Helper()
	engine := scoring.NewEngine(2)
	service := matching.NewService(repo, nil, engine, 100)
	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 8000}, service, repo, authEnabled)
}

func seedRepo(repo *fakeRepo) {
	salMin, salMax := 100000.0, 140000.0
	jobMin, jobMax := 80000.0, 120000.0

	repo.talents["t1"] = &models.Talent{
		ID:                   "t1",
		FullName:             "Maya Lindqvist",
		Title:                "Senior Frontend Engineer",
		Location:             "Berlin, Germany",
		RemotePreference:     true,
		ExperienceLevel:      models.LevelSenior,
		YearsOfExperience:    7,
		SalaryExpectationMin: &salMin,
		SalaryExpectationMax: &salMax,
		Availability:         models.AvailabilityOpen,
		Skills: []models.TalentSkill{
			{Name: "React", Proficiency: 4},
			{Name: "Node.js", Proficiency: 3},
		},
		CreatedAt: time.Now(),
	}
	repo.jobs["j1"] = &models.Job{
		ID:              "j1",
		Company:         "Northwind Labs",
		Title:           "Senior React Developer",
		Location:        "Berlin, Germany",
		RemoteAllowed:   true,
		ExperienceLevel: models.LevelSenior,
		MinYears:        5,
		SalaryMin:       &jobMin,
		SalaryMax:       &jobMax,
		Status:          models.JobActive,
		Skills: []models.JobSkill{
			{Name: "React", Proficiency: 3, IsRequired: true},
			{Name: "Node.js", Proficiency: 4, IsRequired: true},
		},
		CreatedAt: time.Now(),
	}
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, s *Server, method, path string) (int, testEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v (body %s)", err, rec.Body.String())
	}
	return rec.Code, env
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, newFakeRepo(), false)

	status, env := doRequest(t, s, "GET", "/health")
	if status != http.StatusOK || !env.Success {
		t.Errorf("expected healthy 200, got %d (success=%v)", status, env.Success)
	}
}

func TestMatchTalentToJobs(t *testing.T) {
	repo := newFakeRepo()
	seedRepo(repo)
	s := newTestServer(t, repo, false)

	status, env := doRequest(t, s, "POST", "/api/matching/talent/t1/jobs")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("expected 200, got %d (error=%v)", status, env.Error)
	}

	var data struct {
		Matches []models.MatchResult `json:"matches"`
		Total   int                  `json:"total"`
		Cached  bool                 `json:"cached"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode ranking: %v", err)
	}

	if data.Total != 1 || len(data.Matches) != 1 {
		t.Fatalf("expected 1 match, got total=%d len=%d", data.Total, len(data.Matches))
	}
	if data.Cached {
		t.Error("first computation should not be served from cache")
	}

	m := data.Matches[0]
	if m.JobID != "j1" {
		t.Errorf("expected job j1, got %s", m.JobID)
	}
	if m.MatchScore != 90 {
		t.Errorf("expected composite score 90, got %v", m.MatchScore)
	}

	// The ranking is persisted for degraded reads.
	if len(repo.upserted) == 0 {
		t.Error("expected computed matches to be upserted")
	}
}

func TestMatchTalentToJobsUnknownTalent(t *testing.T) {
	repo := newFakeRepo()
	seedRepo(repo)
	s := newTestServer(t, repo, false)

	status, env := doRequest(t, s, "POST", "/api/matching/talent/nope/jobs")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "talent_not_found" {
		t.Errorf("expected talent_not_found, got %+v", env.Error)
	}
}

func TestMatchJobToTalents(t *testing.T) {
	repo := newFakeRepo()
	seedRepo(repo)
	s := newTestServer(t, repo, false)

	status, env := doRequest(t, s, "POST", "/api/matching/job/j1/talents")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("expected 200, got %d (error=%v)", status, env.Error)
	}

	var data struct {
		Matches []models.MatchResult `json:"matches"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode ranking: %v", err)
	}
	if len(data.Matches) != 1 || data.Matches[0].TalentID != "t1" {
		t.Fatalf("expected talent t1 ranked, got %+v", data.Matches)
	}
}

func TestMatchJobToTalentsUnknownJob(t *testing.T) {
	repo := newFakeRepo()
	s := newTestServer(t, repo, false)

	status, env := doRequest(t, s, "POST", "/api/matching/job/nope/talents")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "job_not_found" {
		t.Errorf("expected job_not_found, got %+v", env.Error)
	}
}

func TestMatchLimitValidation(t *testing.T) {
	repo := newFakeRepo()
	seedRepo(repo)
	s := newTestServer(t, repo, false)

	for _, limit := range []string{"0", "-3", "51", "abc"} {
		status, env := doRequest(t, s, "POST", "/api/matching/talent/t1/jobs?limit="+limit)
		if status != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", limit, status)
			continue
		}
		if env.Error == nil || env.Error.Code != "invalid_range" {
			t.Errorf("limit=%s: expected invalid_range, got %+v", limit, env.Error)
		}
	}

	// Boundary values pass.
	for _, limit := range []string{"1", "50"} {
		status, _ := doRequest(t, s, "POST", "/api/matching/talent/t1/jobs?limit="+limit)
		if status != http.StatusOK {
			t.Errorf("limit=%s: expected 200, got %d", limit, status)
		}
	}
}

func TestMatchEmptyPool(t *testing.T) {
	repo := newFakeRepo()
	seedRepo(repo)
	delete(repo.jobs, "j1")
	s := newTestServer(t, repo, false)

	status, env := doRequest(t, s, "POST", "/api/matching/talent/t1/jobs")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("expected 200 for an empty pool, got %d", status)
	}

	var data struct {
		Matches []models.MatchResult `json:"matches"`
		Total   int                  `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode ranking: %v", err)
	}
	if data.Matches == nil {
		t.Error("matches should serialize as an empty array, not null")
	}
	if data.Total != 0 {
		t.Errorf("expected total 0, got %d", data.Total)
	}
}

func TestGetSpecificMatch(t *testing.T) {
	repo := newFakeRepo()
	seedRepo(repo)
	s := newTestServer(t, repo, false)

	status, env := doRequest(t, s, "GET", "/api/matching/talent/t1/job/j1")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("expected 200, got %d (error=%v)", status, env.Error)
	}

	var result models.MatchResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("failed to decode match: %v", err)
	}
	if result.MatchScore != 90 {
		t.Errorf("expected score 90, got %v", result.MatchScore)
	}
	if result.SkillMatchScore != 87.5 {
		t.Errorf("expected skill score 87.5, got %v", result.SkillMatchScore)
	}

	status, env = doRequest(t, s, "GET", "/api/matching/talent/t1/job/nope")
	if status != http.StatusNotFound || env.Error == nil || env.Error.Code != "job_not_found" {
		t.Errorf("expected job_not_found 404, got %d %+v", status, env.Error)
	}
}

func TestStats(t *testing.T) {
	repo := newFakeRepo()
	seedRepo(repo)
	s := newTestServer(t, repo, false)

	status, env := doRequest(t, s, "GET", "/api/matching/stats")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var stats models.Stats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.TotalTalents != 1 || stats.TotalJobs != 1 {
		t.Errorf("unexpected pool sizes: %+v", stats)
	}
	if stats.Status != "operational" {
		t.Errorf("unexpected status: %s", stats.Status)
	}
}

func TestListEndpoints(t *testing.T) {
	repo := newFakeRepo()
	seedRepo(repo)
	s := newTestServer(t, repo, false)

	status, env := doRequest(t, s, "GET", "/api/matching/talents")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var talents struct {
		Talents []models.TalentSummary `json:"talents"`
		Count   int                    `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &talents); err != nil {
		t.Fatalf("failed to decode talents: %v", err)
	}
	if talents.Count != 1 || talents.Talents[0].Name != "Maya Lindqvist" {
		t.Errorf("unexpected talent listing: %+v", talents)
	}

	status, env = doRequest(t, s, "GET", "/api/matching/jobs")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var jobs struct {
		Jobs  []models.JobSummary `json:"jobs"`
		Count int                 `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &jobs); err != nil {
		t.Fatalf("failed to decode jobs: %v", err)
	}
	if jobs.Count != 1 || jobs.Jobs[0].Company != "Northwind Labs" {
		t.Errorf("unexpected job listing: %+v", jobs)
	}
}

func TestReadyEndpoint(t *testing.T) {
	repo := newFakeRepo()
	s := newTestServer(t, repo, false)

	status, _ := doRequest(t, s, "GET", "/ready")
	if status != http.StatusOK {
		t.Errorf("expected ready 200, got %d", status)
	}

	repo.pingErr = context.DeadlineExceeded
	status, env := doRequest(t, s, "GET", "/ready")
	if status != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when the database is down, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "not_ready" {
		t.Errorf("expected not_ready, got %+v", env.Error)
	}
}

func TestAuthEnabled(t *testing.T) {
	repo := newFakeRepo()
	seedRepo(repo)
	repo.clients["good-key-12345"] = &models.APIClient{
		ID:          1,
		Name:        "web-bff",
		APIKey:      "good-key-12345",
		IsActive:    true,
		Permissions: []string{"matching:*"},
	}
	repo.clients["inactive-key-1"] = &models.APIClient{
		ID:       2,
		Name:     "old-service",
		APIKey:   "inactive-key-1",
		IsActive: false,
	}
	s := newTestServer(t, repo, true)

	// Missing key
	status, env := doRequest(t, s, "GET", "/api/matching/stats")
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 without a key, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "unauthorized" {
		t.Errorf("expected unauthorized, got %+v", env.Error)
	}

	// Valid key via Authorization header
	req := httptest.NewRequest("GET", "/api/matching/stats", nil)
	req.Header.Set("Authorization", "Bearer good-key-12345")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with a valid key, got %d", rec.Code)
	}

	// Valid key via X-API-Key header
	req = httptest.NewRequest("GET", "/api/matching/stats", nil)
	req.Header.Set("X-API-Key", "good-key-12345")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with X-API-Key, got %d", rec.Code)
	}

	// Inactive client
	req = httptest.NewRequest("GET", "/api/matching/stats", nil)
	req.Header.Set("Authorization", "Bearer inactive-key-1")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for an inactive client, got %d", rec.Code)
	}

	// Health stays public
	status, _ = doRequest(t, s, "GET", "/health")
	if status != http.StatusOK {
		t.Errorf("health should not require auth, got %d", status)
	}
}
