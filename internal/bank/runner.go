package bank

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunnerOptions configures a Runner. Zero values fall back to defaults.
type RunnerOptions struct {
	Interval  time.Duration
	Workers   int
	BatchSize int
	Now       func() time.Time
}

// Runner performs scheduled syncs. Several runners may share a store: each due
// schedule is claimed before it runs, so a run happens at most once.
type Runner struct {
	repo      Repository
	interval  time.Duration
	workers   int
	batchSize int
	now       func() time.Time
}

func NewRunner(repo Repository, opts RunnerOptions) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}

	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}

	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Runner{
		repo:      repo,
		interval:  opts.Interval,
		workers:   opts.Workers,
		batchSize: opts.BatchSize,
		now:       opts.Now,
	}
}

// Run ticks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("sync runner started", "interval", r.interval, "workers", r.workers)

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync runner stopped")
			return
		case <-ticker.C:
			n, err := r.RunOnce(ctx)
			if err != nil {
				slog.Warn("sync pass failed", "error", err)
				continue
			}

			if n > 0 {
				slog.Info("sync pass finished", "synced", n)
			}
		}
	}
}

// RunOnce syncs every schedule due now and returns how many it ran.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	now := r.now()

	due, err := r.repo.DueSchedules(ctx, now, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("finding due schedules: %w", err)
	}

	var (
		g      errgroup.Group
		synced atomic.Int64
		failed atomic.Int64
	)

	g.SetLimit(r.workers)

	// A failed schedule does not stop the others.
	for _, s := range due {
		g.Go(func() error {
			ran, err := r.runSchedule(ctx, s, now)
			if err != nil {
				failed.Add(1)
				return fmt.Errorf("user %d: %w", s.UserID, err)
			}

			if ran {
				synced.Add(1)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Warn("scheduled sync failed", "failed", failed.Load(), "due", len(due), "first_error", err)
	}

	return int(synced.Load()), nil
}

func (r *Runner) runSchedule(ctx context.Context, s *Schedule, now time.Time) (bool, error) {
	if !s.Enabled || s.NextRunAt == nil {
		return false, nil
	}

	next := now.Add(s.interval())

	claimed, err := r.repo.ClaimSchedule(ctx, s.ID, *s.NextRunAt, next)
	if err != nil {
		return false, fmt.Errorf("claiming schedule: %w", err)
	}

	if !claimed {
		return false, nil
	}

	conns, err := r.repo.ListConnections(ctx, s.UserID)
	if err != nil {
		return false, fmt.Errorf("listing connections: %w", err)
	}

	for _, c := range conns {
		if c.Status == StatusDisconnected {
			continue
		}

		c.Status = StatusConnected
		c.LastSyncedAt = &now

		if err := r.repo.UpdateConnection(ctx, c); err != nil {
			return false, fmt.Errorf("syncing connection %s: %w", c.ID, err)
		}
	}

	return true, nil
}
