// Package client is a Go SDK for the matching-engine API. Other
// TalentBrains services use it instead of hand-rolling HTTP calls.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talentbrains/matching-engine/internal/models"
)

// Typed errors mapped from the API error codes, so callers can dispatch
// with errors.Is instead of parsing messages.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidRange = errors.New("parameter out of range")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("service unavailable")
)

// Client is a Go SDK for the matching-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new matching-engine client. apiKey may be empty
// when the target deployment runs with auth disabled.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RankedMatches is one ranking response. Cached reports whether the
// server answered from its cache; ComputedAt is when the ranking was
// actually computed.
type RankedMatches struct {
	Matches    []models.MatchResult `json:"matches"`
	Total      int                  `json:"total"`
	Cached     bool                 `json:"cached"`
	ComputedAt time.Time            `json:"computed_at"`
}

// MatchTalentToJobs ranks jobs for a talent, best first. limit 0 uses
// the server default.
func (c *Client) MatchTalentToJobs(ctx context.Context, talentID string, limit int) (*RankedMatches, error) {
	path := fmt.Sprintf("/api/matching/talent/%s/jobs", talentID)
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var ranked RankedMatches
	if err := c.doJSON(ctx, "POST", path, &ranked); err != nil {
		return nil, err
	}
	return &ranked, nil
}

// MatchJobToTalents ranks talents for a job, best first
func (c *Client) MatchJobToTalents(ctx context.Context, jobID string, limit int) (*RankedMatches, error) {
	path := fmt.Sprintf("/api/matching/job/%s/talents", jobID)
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var ranked RankedMatches
	if err := c.doJSON(ctx, "POST", path, &ranked); err != nil {
		return nil, err
	}
	return &ranked, nil
}

// GetMatch computes the match between one talent and one job
func (c *Client) GetMatch(ctx context.Context, talentID, jobID string) (*models.MatchResult, error) {
	path := fmt.Sprintf("/api/matching/talent/%s/job/%s", talentID, jobID)

	var result models.MatchResult
	if err := c.doJSON(ctx, "GET", path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats reports the service's pool sizes and status
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	if err := c.doJSON(ctx, "GET", "/api/matching/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListTalents retrieves summaries of all matchable talents
func (c *Client) ListTalents(ctx context.Context) ([]models.TalentSummary, error) {
	var data struct {
		Talents []models.TalentSummary `json:"talents"`
		Count   int                    `json:"count"`
	}
	if err := c.doJSON(ctx, "GET", "/api/matching/talents", &data); err != nil {
		return nil, err
	}
	return data.Talents, nil
}

// ListJobs retrieves summaries of all active jobs
func (c *Client) ListJobs(ctx context.Context) ([]models.JobSummary, error) {
	var data struct {
		Jobs  []models.JobSummary `json:"jobs"`
		Count int                 `json:"count"`
	}
	if err := c.doJSON(ctx, "GET", "/api/matching/jobs", &data); err != nil {
		return nil, err
	}
	return data.Jobs, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, "GET", "/health", nil)
}

// envelope is the {success, data, error} wrapper every endpoint uses
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// doJSON performs a request and decodes the envelope's data field into
// out (which may be nil when the caller only cares about success).
func (c *Client) doJSON(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response (HTTP %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		return apiErrorFor(resp.StatusCode, env)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}
	return nil
}

// apiErrorFor maps an error envelope to a typed error
func apiErrorFor(status int, env envelope) error {
	code, message := "unknown", fmt.Sprintf("HTTP %d", status)
	if env.Error != nil {
		code, message = env.Error.Code, env.Error.Message
	}

	switch code {
	case "talent_not_found", "job_not_found":
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case "invalid_range", "validation_error":
		return fmt.Errorf("%w: %s", ErrInvalidRange, message)
	case "unauthorized", "forbidden":
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case "not_ready":
		return fmt.Errorf("%w: %s", ErrUnavailable, message)
	}
	return fmt.Errorf("API error: %s - %s", code, message)
}
