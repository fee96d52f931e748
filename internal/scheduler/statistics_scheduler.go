package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SAP-F-2025/course-service/internal/services"
)

// DefaultSweepTimeout bounds one scheduled statistics sweep
const DefaultSweepTimeout = 10 * time.Minute

// StatisticsScheduler runs the full statistics sweep on a cron schedule
type StatisticsScheduler struct {
	cron     *cron.Cron
	schedule string
	stats    services.StatisticsService
	logger   *slog.Logger
	timeout  time.Duration
	runs     atomic.Int64
}

// NewStatisticsScheduler registers the sweep under schedule, which accepts the
// standard five field syntax and descriptors such as "@every 15m"
func NewStatisticsScheduler(schedule string, stats services.StatisticsService, logger *slog.Logger, timeout time.Duration) (*StatisticsScheduler, error) {
	if timeout <= 0 {
		timeout = DefaultSweepTimeout
	}

	s := &StatisticsScheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		schedule: schedule,
		stats:    stats,
		logger:   logger,
		timeout:  timeout,
	}

	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("invalid statistics schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *StatisticsScheduler) Start() {
	s.cron.Start()
	s.logger.Info("Statistics scheduler started", "schedule", s.schedule)
}

// Stop prevents new sweeps and waits for a running one until ctx ends
func (s *StatisticsScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Statistics scheduler stopped", "runs", s.runs.Load())
		return nil
	case <-ctx.Done():
		return fmt.Errorf("statistics sweep still running: %w", ctx.Err())
	}
}

// RunOnce performs a sweep immediately, outside the schedule
func (s *StatisticsScheduler) RunOnce(ctx context.Context) (*services.RecomputeSummary, error) {
	s.runs.Add(1)
	return s.stats.RecomputeAll(ctx)
}

// Runs reports how many sweeps have started
func (s *StatisticsScheduler) Runs() int64 {
	return s.runs.Load()
}

func (s *StatisticsScheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Info("Scheduled statistics sweep starting")
	summary, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("Scheduled statistics sweep failed", "error", err)
		return
	}
	if summary.Failures > 0 {
		s.logger.Warn("Scheduled statistics sweep had failures", "failures", summary.Failures)
	}
}
