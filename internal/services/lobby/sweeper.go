package lobby

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// sweepTimeout bounds a single sweep run
const sweepTimeout = 30 * time.Second

// Sweeper periodically removes waiting matches nobody joined
type Sweeper struct {
	scheduler  gocron.Scheduler
	controller *Controller
	interval   time.Duration
	staleAfter time.Duration
	logger     *slog.Logger
}

// NewSweeper schedules PruneStaleMatches every interval.
// The job does not run until Start is called.
func NewSweeper(controller *Controller, interval, staleAfter time.Duration, logger *slog.Logger) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Sweeper{
		scheduler:  scheduler,
		controller: controller,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     logger,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.Sweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return s, nil
}

// AddJob runs task on the sweep interval alongside pruning
func (s *Sweeper) AddJob(task func()) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(task),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

// Start begins running the scheduled job
func (s *Sweeper) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running sweep to finish
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

// Sweep runs one pruning pass
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.controller.PruneStaleMatches(ctx, s.staleAfter); err != nil {
		s.logger.Error("stale match sweep failed", slog.String("error", err.Error()))
	}
}
