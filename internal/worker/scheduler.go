// Package worker drives the periodic re-provisioning of daemon mode.
package worker

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/netinit-io/netinit/internal/log"
)

// Scheduler runs the re-provisioning task on a cron schedule.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	logger  *slog.Logger
}

// NewScheduler creates an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: log.With("component", "scheduler"),
	}
}

// Schedule registers the task under a cron expression (standard five
// fields or descriptors like "@every 15m").
func (s *Scheduler) Schedule(spec string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wrapped := func() {
		s.logger.Debug("running scheduled provisioning pass")
		task()
	}
	if _, err := s.cron.AddFunc(spec, wrapped); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.logger.Info("task scheduled", "schedule", spec)
	return nil
}

// Start begins executing scheduled tasks.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.logger.Info("starting background scheduler")
	s.cron.Start()
}

// Stop waits for any running task and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.logger.Info("stopping background scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
}
