package scheduler

import (
	"context"
	"time"

	"storyweaver/internal/ports"
)

// TickerScheduler runs a job at a fixed interval, starting with one
// immediate execution.
type TickerScheduler struct {
	interval time.Duration
	stop     chan struct{}
}

var _ ports.Scheduler = (*TickerScheduler)(nil)

// NewTickerScheduler builds a scheduler for the given cadence.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	return &TickerScheduler{interval: interval}
}

// Start begins ticking; calling it twice is a no-op.
func (t *TickerScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || t.interval <= 0 {
		return nil
	}

	if t.stop != nil {
		return nil
	}

	t.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case tick := <-ticker.C:
				job(tick)
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (t *TickerScheduler) Stop(ctx context.Context) error {
	if t.stop == nil {
		return nil
	}
	close(t.stop)
	t.stop = nil
	return nil
}
