package syncer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SchedulerConfig sets task intervals. Zero values use the defaults.
type SchedulerConfig struct {
	ForwardInterval time.Duration
	EpochInterval   time.Duration
	BackfillRetry   time.Duration
	// BlockSignal, when set, wakes forward sync before its interval ends.
	BlockSignal <-chan struct{}
}

// Scheduler drives the sync controllers until its context ends.
// Task failures are logged and retried on the next tick; they never stop the scheduler.
type Scheduler struct {
	forward  ForwardSyncer
	epochs   EpochSyncer
	backfill BackfillRunner
	cfg      SchedulerConfig
	logger   *zap.Logger
	sleep    func(context.Context, time.Duration) error
}

func NewScheduler(forward ForwardSyncer, epochs EpochSyncer, backfill BackfillRunner, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if cfg.ForwardInterval <= 0 {
		cfg.ForwardInterval = DefaultForwardInterval
	}
	if cfg.EpochInterval <= 0 {
		cfg.EpochInterval = DefaultEpochInterval
	}
	if cfg.BackfillRetry <= 0 {
		cfg.BackfillRetry = DefaultBackfillRetry
	}
	return &Scheduler{
		forward:  forward,
		epochs:   epochs,
		backfill: backfill,
		cfg:      cfg,
		logger:   logger.Named("scheduler"),
		sleep:    clock.SleepWithContext,
	}
}

// Run starts all tasks and blocks until ctx is canceled. A running backfill is paused on exit.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.every(ctx, "forward_sync", s.cfg.ForwardInterval, s.cfg.BlockSignal, func(ctx context.Context) error {
			n, err := s.forward.SyncForward(ctx)
			if err == nil {
				s.logger.Debug("forward sync tick", zap.Int("inserted", n))
			}
			return err
		})
		return nil
	})
	g.Go(func() error {
		s.every(ctx, "epoch_sync", s.cfg.EpochInterval, nil, func(ctx context.Context) error {
			n, err := s.epochs.SyncAllEpochs(ctx)
			if err == nil {
				s.logger.Debug("epoch sync tick", zap.Int("processed", n))
			}
			return err
		})
		return nil
	})
	g.Go(func() error {
		s.runBackfill(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.backfill.Stop()
		return nil
	})

	return g.Wait()
}

func (s *Scheduler) every(
	ctx context.Context,
	task string,
	interval time.Duration,
	signal <-chan struct{},
	fn func(context.Context) error,
) {
	for {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("task failed, retrying next tick",
				zap.String("task", task),
				zap.Duration("sleep", interval),
				zap.Error(err))
		}
		var err error
		if signal, err = s.wait(ctx, interval, signal); err != nil {
			return
		}
	}
}

// wait sleeps for interval or until signal fires. A closed signal is dropped and plain sleeping resumes.
func (s *Scheduler) wait(ctx context.Context, interval time.Duration, signal <-chan struct{}) (<-chan struct{}, error) {
	if signal == nil {
		return nil, s.sleep(ctx, interval)
	}

	sleepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.sleep(sleepCtx, interval) }()

	select {
	case err := <-done:
		return signal, err
	case _, ok := <-signal:
		cancel()
		<-done
		if !ok {
			s.logger.Warn("block signal closed, falling back to interval")
			signal = nil
		}
		return signal, ctx.Err()
	}
}

func (s *Scheduler) runBackfill(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		err := s.backfill.Start(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		s.logger.Warn("backfill did not finish, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("sleep", s.cfg.BackfillRetry),
			zap.Error(err))
		if err = s.sleep(ctx, s.cfg.BackfillRetry); err != nil {
			return
		}
	}
}
