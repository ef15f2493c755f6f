package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/superlists/internal/metrics"
	"github.com/ErlanBelekov/superlists/internal/repository"
	"github.com/robfig/cron/v3"
)

const defaultBatchSize = 500

// Reaper deletes login tokens older than maxAge on a cron schedule. Tokens
// are otherwise reusable, so this is what bounds a leaked link's lifetime.
type Reaper struct {
	repo      repository.TokenRepository
	logger    *slog.Logger
	spec      string
	maxAge    time.Duration
	batchSize int
	now       func() time.Time
}

// NewReaper validates spec as a standard five-field cron expression. A
// maxAge of zero disables reaping.
func NewReaper(repo repository.TokenRepository, logger *slog.Logger, spec string, maxAge time.Duration, batchSize int) (*Reaper, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse reaper schedule %q: %w", spec, err)
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Reaper{
		repo:      repo,
		logger:    logger.With("component", "reaper"),
		spec:      spec,
		maxAge:    maxAge,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

// Start runs Reap on the schedule until ctx is cancelled. Overlapping runs
// are skipped.
func (r *Reaper) Start(ctx context.Context) {
	if r.maxAge <= 0 {
		r.logger.Info("reaper disabled (max age is zero)")
		return
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(r.spec, func() {
		if _, err := r.Reap(ctx); err != nil {
			r.logger.ErrorContext(ctx, "reap login tokens", "error", err)
		}
	}); err != nil {
		r.logger.Error("schedule reaper", "error", err)
		return
	}

	r.logger.Info("reaper started", "schedule", r.spec, "max_age", r.maxAge)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	r.logger.Info("reaper shut down")
}

// Reap deletes expired tokens in batches and returns how many went.
func (r *Reaper) Reap(ctx context.Context) (int, error) {
	if r.maxAge <= 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { metrics.ReaperCycleDuration.Observe(time.Since(start).Seconds()) }()

	cutoff := r.now().Add(-r.maxAge)
	total := 0
	for {
		n, err := r.repo.DeleteCreatedBefore(ctx, cutoff, r.batchSize)
		total += n
		metrics.ReaperDeletedTotal.Add(float64(n))
		if err != nil {
			return total, fmt.Errorf("delete tokens before %s: %w", cutoff.Format(time.RFC3339), err)
		}
		if n < r.batchSize {
			break
		}
	}

	if total > 0 {
		r.logger.InfoContext(ctx, "reaped login tokens", "count", total)
	}
	return total, nil
}
