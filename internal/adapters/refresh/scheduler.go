package refresh

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/pkg/logger"
)

// Scheduler enqueues a refresh of every table on a cron schedule. An
// empty spec disables scheduling entirely.
type Scheduler struct {
	spec   string
	queue  *Queue
	cron   *cron.Cron
	logger logger.Logger
}

// NewScheduler creates a scheduler with a standard 5-field cron spec.
func NewScheduler(spec string, queue *Queue, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		spec:  spec,
		queue: queue,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("refresh-schedule")
	}
	return s
}

// Start validates the spec and begins ticking. Returns ErrInvalidSpec
// for a spec cron cannot parse.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec == "" {
		s.logger.Info(ctx, "scheduled refresh disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(s.spec, func() {
		for _, table := range model.AllTables() {
			if !s.queue.Enqueue(ctx, Job{Table: table, Trigger: TriggerSchedule}) {
				s.logger.Warn(ctx, "scheduled refresh dropped by full queue",
					logger.String("table", string(table)),
				)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSpec, s.spec, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info(ctx, "scheduled refresh enabled", logger.String("spec", s.spec))
	return nil
}

// Stop halts future ticks. Jobs already enqueued still run.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
