package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SAP-F-2025/course-service/internal/services"
)

// fakeStats counts sweeps; every other method is unused here
type fakeStats struct {
	services.StatisticsService
	calls atomic.Int64
	err   error
}

func (f *fakeStats) RecomputeAll(ctx context.Context) (*services.RecomputeSummary, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &services.RecomputeSummary{Courses: 3}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewStatisticsScheduler_InvalidSpec(t *testing.T) {
	for _, schedule := range []string{"", "every five minutes", "@every banana"} {
		if _, err := NewStatisticsScheduler(schedule, &fakeStats{}, discardLogger(), 0); err == nil {
			t.Errorf("NewStatisticsScheduler(%q) succeeded", schedule)
		}
	}
}

func TestStatisticsScheduler_RunOnce(t *testing.T) {
	stats := &fakeStats{}
	s, err := NewStatisticsScheduler("@every 15m", stats, discardLogger(), 0)
	if err != nil {
		t.Fatalf("NewStatisticsScheduler() error = %v", err)
	}

	summary, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if summary.Courses != 3 || s.Runs() != 1 {
		t.Errorf("summary = %+v runs = %d", summary, s.Runs())
	}

	stats.err = errors.New("database down")
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Error("RunOnce() swallowed the sweep error")
	}
}

func TestStatisticsScheduler_Schedule(t *testing.T) {
	stats := &fakeStats{}
	s, err := NewStatisticsScheduler("@every 1s", stats, discardLogger(), time.Second)
	if err != nil {
		t.Fatalf("NewStatisticsScheduler() error = %v", err)
	}

	s.Start()
	deadline := time.Now().Add(5 * time.Second)
	for stats.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if stats.calls.Load() == 0 {
		t.Error("scheduled sweep never ran")
	}
}
