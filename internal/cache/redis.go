// Package cache holds ranked match results in Redis so repeated queries
// for the same profile within the TTL skip recomputation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talentbrains/matching-engine/internal/models"
)

const keyPrefix = "matches:"

// Entry is one cached ranking: the full ranked slice up to the candidate
// cap, so any limit within bounds can be served by truncation.
type Entry struct {
	Results    []models.MatchResult `json:"results"`
	ComputedAt time.Time            `json:"computed_at"`
}

// Cache wraps a Redis client with match-specific keys and a TTL
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and returns a Cache
func New(address, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// GetTalentMatches reads the cached ranking for a talent. A miss or a
// decode failure reads as a miss; the caller recomputes.
func (c *Cache) GetTalentMatches(ctx context.Context, talentID string) (*Entry, bool) {
	return c.get(ctx, talentKey(talentID))
}

// GetJobMatches reads the cached ranking for a job
func (c *Cache) GetJobMatches(ctx context.Context, jobID string) (*Entry, bool) {
	return c.get(ctx, jobKey(jobID))
}

// SetTalentMatches stores a freshly computed ranking for a talent
func (c *Cache) SetTalentMatches(ctx context.Context, talentID string, results []models.MatchResult, computedAt time.Time) error {
	return c.set(ctx, talentKey(talentID), results, computedAt)
}

// SetJobMatches stores a freshly computed ranking for a job
func (c *Cache) SetJobMatches(ctx context.Context, jobID string, results []models.MatchResult, computedAt time.Time) error {
	return c.set(ctx, jobKey(jobID), results, computedAt)
}

// InvalidateTalent drops the cached ranking for a talent
func (c *Cache) InvalidateTalent(ctx context.Context, talentID string) error {
	return c.client.Del(ctx, talentKey(talentID)).Err()
}

// InvalidateJob drops the cached ranking for a job
func (c *Cache) InvalidateJob(ctx context.Context, jobID string) error {
	return c.client.Del(ctx, jobKey(jobID)).Err()
}

// InvalidateAll removes every cached ranking, scanning by key prefix
func (c *Cache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	var deleted int

	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("failed to delete some cache keys", "error", err)
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	slog.Debug("match cache invalidated", "keys_deleted", deleted)
	return nil
}

// Ping verifies Redis connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) get(ctx context.Context, key string) (*Entry, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		slog.Warn("cache entry corrupt, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return &entry, true
}

func (c *Cache) set(ctx context.Context, key string, results []models.MatchResult, computedAt time.Time) error {
	raw, err := json.Marshal(Entry{Results: results, ComputedAt: computedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func talentKey(id string) string { return keyPrefix + "talent:" + id }
func jobKey(id string) string    { return keyPrefix + "job:" + id }
