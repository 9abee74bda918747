// Package warmup keeps the match cache populated: on a cron schedule it
// recomputes rankings for every matchable talent so the redis cache and
// the matches table stay warm for fallback reads.
package warmup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/talentbrains/matching-engine/internal/matching"
	"github.com/talentbrains/matching-engine/internal/storage"
)

// Warmer wraps robfig/cron and manages the warm cycle
type Warmer struct {
	cron    *cron.Cron
	repo    storage.Repository
	service *matching.Service
	spec    string // cron spec, e.g. "@every 6h"
}

// New creates a Warmer that fires on the given interval
func New(repo storage.Repository, service *matching.Service, interval time.Duration) *Warmer {
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &Warmer{
		cron:    cron.New(),
		repo:    repo,
		service: service,
		spec:    fmt.Sprintf("@every %s", interval),
	}
}

// Start registers the job and starts the scheduler. Also runs one cycle
// immediately so the cache is populated without waiting for the first tick.
func (w *Warmer) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.spec, func() {
		w.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	w.cron.Start()
	slog.Info("warmup scheduler started", "spec", w.spec)

	// Run immediately on startup (non-blocking)
	go w.runCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler
func (w *Warmer) Stop() {
	w.cron.Stop()
	slog.Info("warmup scheduler stopped")
}

// runCycle recomputes rankings for every matchable talent
func (w *Warmer) runCycle(ctx context.Context) {
	start := time.Now()
	slog.Info("warmup cycle started")

	talents, err := w.repo.ListAvailableTalents(ctx, 10000)
	if err != nil {
		slog.Error("warmup: failed to list talents", "error", err)
		return
	}

	if len(talents) == 0 {
		slog.Info("warmup: no matchable talents")
		return
	}

	var warmed, failed int
	for _, t := range talents {
		if ctx.Err() != nil {
			slog.Info("warmup cycle cancelled", "warmed", warmed)
			return
		}

		if _, _, err := w.service.MatchTalentToJobs(ctx, t.ID, matching.MaxLimit); err != nil {
			slog.Warn("warmup: ranking failed", "talent_id", t.ID, "error", err)
			failed++
			continue
		}
		warmed++
	}

	slog.Info("warmup cycle complete",
		"warmed", warmed,
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
