package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler drives recurring sync triggers from a cron expression. The core
// only sees a callable job; the cadence grammar stays in here.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// Schedule registers a job against a standard 5-field cron expression.
func (s *Scheduler) Schedule(spec string, name string, job func()) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("Scheduled job triggered", slog.String("job", name))
		job()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s with spec %q: %w", name, spec, err)
	}
	return nil
}

// Start begins firing scheduled jobs in the scheduler's own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
