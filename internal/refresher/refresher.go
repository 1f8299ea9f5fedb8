package refresher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Target is a cache-backed data source the refresher keeps warm.
// Implemented by tools.NewsTool.
type Target interface {
	Name() string
	Stale(ctx context.Context) bool
	Refresh(ctx context.Context) error
}

// Refresher re-warms its targets on a fixed interval so queries are served
// from a fresh cache instead of paying upstream latency.
type Refresher struct {
	interval time.Duration
	targets  []Target
	logger   *zap.Logger

	mu sync.Mutex // guards against overlapping cycles
}

// New creates a refresher for the given targets.
func New(interval time.Duration, targets []Target, logger *zap.Logger) *Refresher {
	return &Refresher{
		interval: interval,
		targets:  targets,
		logger:   logger,
	}
}

// Run refreshes stale targets immediately, then on every interval tick until
// the context is canceled. A tick that arrives while a cycle is still running
// is skipped rather than queued.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("refresher-started",
		zap.Duration("interval", r.interval),
		zap.Int("targets", len(r.targets)))

	r.runCycle(ctx, true)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher-stopped")
			return
		case <-ticker.C:
			r.runCycle(ctx, false)
		}
	}
}

// RunOnce executes a single refresh cycle, unconditionally refreshing every
// target. Used by the one-shot CLI command.
func (r *Refresher) RunOnce(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, target := range r.targets {
		if err := target.Refresh(ctx); err != nil {
			RefreshErrorsTotal.WithLabelValues(target.Name()).Inc()
			r.logger.Error("refresh-failed", zap.String("target", target.Name()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// runCycle refreshes every stale target. A cycle that would overlap a still
// running one (a long RunOnce, for example) is skipped. Per-target failures
// are isolated: one failing target never blocks the others.
func (r *Refresher) runCycle(ctx context.Context, initial bool) {
	if !r.mu.TryLock() {
		CyclesSkippedTotal.Inc()
		r.logger.Warn("refresh-cycle-still-running-skipping-tick")
		return
	}
	defer r.mu.Unlock()

	cycleID := uuid.New().String()
	start := time.Now()
	CyclesTotal.Inc()

	logger := r.logger.With(zap.String("cycle-id", cycleID))
	logger.Info("refresh-cycle-started", zap.Bool("initial", initial))

	for _, target := range r.targets {
		if ctx.Err() != nil {
			logger.Info("refresh-cycle-interrupted")
			return
		}

		if !target.Stale(ctx) {
			logger.Debug("target-fresh", zap.String("target", target.Name()))
			continue
		}

		err := target.Refresh(ctx)
		if err != nil {
			RefreshErrorsTotal.WithLabelValues(target.Name()).Inc()
			logger.Error("refresh-failed", zap.String("target", target.Name()), zap.Error(err))
			continue
		}

		logger.Info("target-refreshed", zap.String("target", target.Name()))
	}

	CycleDurationSeconds.Observe(time.Since(start).Seconds())
	logger.Info("refresh-cycle-finished", zap.Duration("duration", time.Since(start)))
}
