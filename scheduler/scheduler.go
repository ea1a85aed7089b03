package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultSpec = "@every 30s"

// TransitionRunner applies scheduling-window transitions that are due.
type TransitionRunner interface {
	RunScheduledTransitions(ctx context.Context, now time.Time) int
}

type Scheduler struct {
	cron   *cron.Cron
	runner TransitionRunner
	spec   string
	logger *slog.Logger
	now    func() time.Time
}

func NewScheduler(runner TransitionRunner, spec string, logger *slog.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{
		cron:   c,
		runner: runner,
		spec:   spec,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the transition job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runTransitions); err != nil {
		return fmt.Errorf("invalid scheduler spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("tournament scheduler started", slog.String("spec", s.spec))
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("tournament scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runTransitions() {
	s.RunNow(context.Background())
}

// RunNow applies due transitions immediately.
func (s *Scheduler) RunNow(ctx context.Context) int {
	applied := s.runner.RunScheduledTransitions(ctx, s.now())
	if applied > 0 {
		s.logger.Info("scheduled tournament transitions applied", slog.Int("count", applied))
	}
	return applied
}
