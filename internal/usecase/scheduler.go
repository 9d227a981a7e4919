package usecase

import (
	"context"
	"log/slog"
	"time"

	"storyweaver/internal/ports"
)

// RefreshScheduler wires the ticker driver with the feed refresh pipeline.
type RefreshScheduler struct {
	driver   ports.Scheduler
	pipeline *FeedPipeline
	limit    int
	logger   *slog.Logger
}

// NewRefreshScheduler returns a helper to start/stop the recurring refresh.
func NewRefreshScheduler(driver ports.Scheduler, pipeline *FeedPipeline, limit int, logger *slog.Logger) *RefreshScheduler {
	if limit <= 0 {
		limit = 20
	}
	return &RefreshScheduler{driver: driver, pipeline: pipeline, limit: limit, logger: logger}
}

// Start registers the refresh job with the provided scheduler.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		result, err := s.pipeline.Refresh(ctx, nil, s.limit)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("scheduled refresh failed", "error", err)
			}
			return
		}
		if s.logger != nil {
			s.logger.Info("scheduled refresh done", "trigger", trigger.Format(time.RFC3339), "refreshed", result.Refreshed)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
