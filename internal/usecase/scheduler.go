package usecase

import (
	"context"
	"time"

	xlogger "rrtracker/pkg/logger"
)

// Scheduler triggers batch runs on a fixed interval. Runs are sequential
// within one scheduler; overlap protection across replicas is out of scope
// at the documented trigger frequency.
type Scheduler struct {
	checker  *CrossingChecker
	interval time.Duration
	logger   *xlogger.Logger
}

func NewScheduler(checker *CrossingChecker, interval time.Duration, logger *xlogger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{checker: checker, interval: interval, logger: logger}
}

// Start blocks until ctx is cancelled, running one batch per tick.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started", xlogger.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.checker.Run(ctx, false); err != nil {
				s.logger.Error("scheduled run failed", xlogger.Error(err))
			}
		}
	}
}
