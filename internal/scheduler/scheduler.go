package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Sweeper is any cache that can reclaim memory held by expired entries.
type Sweeper interface {
	ClearExpired() int
}

// Scheduler periodically sweeps expired entries out of the registered
// caches. Lazy expiry on read keeps the caches correct without it; the
// sweep only reclaims memory for keys that are never read again.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweepers  []Sweeper
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler over the given caches.
func New(interval time.Duration, logger *slog.Logger, sweepers ...Sweeper) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweepers:  sweepers,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic sweep and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 || len(s.sweepers) == 0 {
		s.logger.Info("cache sweep disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		var evicted int
		for _, sw := range s.sweepers {
			evicted += sw.ClearExpired()
		}
		if evicted > 0 {
			s.logger.Info("swept expired cache entries", "evicted", evicted)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
