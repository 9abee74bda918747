// Package cleanup prunes stale rows from the matches table so degraded
// reads never serve results older than the retention window.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/talentbrains/matching-engine/internal/storage"
)

// Cleaner handles periodic pruning of stale stored matches
type Cleaner struct {
	repo      storage.Repository
	interval  time.Duration
	retention time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(repo storage.Repository, interval, retention time.Duration) *Cleaner {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}

	return &Cleaner{
		repo:      repo,
		interval:  interval,
		retention: retention,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval, "retention", c.retention)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// cleanup deletes matches computed before the retention cutoff
func (c *Cleaner) cleanup(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-c.retention)

	deleted, err := c.repo.DeleteMatchesBefore(ctx, cutoff)
	if err != nil {
		slog.Error("failed to prune stale matches", "error", err)
		return
	}

	if deleted == 0 {
		slog.Debug("no stale matches found")
		return
	}

	slog.Info("stale matches pruned", "deleted", deleted, "cutoff", cutoff)
}
