package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/clock"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EpochSync mirrors platform epochs newer than the cutoff.
type EpochSync struct {
	repo        Repository
	source      EpochSource
	metrics     EpochSyncMetrics
	logger      *zap.Logger
	sleep       func(context.Context, time.Duration) error
	cutoff      time.Time
	delay       time.Duration
	maxFailures int
	recentBatch int
}

func NewEpochSync(
	repo Repository,
	source EpochSource,
	metrics EpochSyncMetrics,
	cutoff time.Time,
	logger *zap.Logger,
) (*EpochSync, error) {
	if metrics == nil {
		return nil, errors.New("epoch sync metrics is required")
	}
	return &EpochSync{
		repo:        repo,
		source:      source,
		metrics:     metrics,
		logger:      logger.Named("epoch_sync"),
		sleep:       clock.SleepWithContext,
		cutoff:      cutoff,
		delay:       epochDelay,
		maxFailures: epochMaxConsecutiveFails,
		recentBatch: recentEpochBatch,
	}, nil
}

// SyncAllEpochs walks from the current epoch down to the cutoff, upserting each epoch.
// It stops at the first epoch that started before the cutoff.
func (s *EpochSync) SyncAllEpochs(ctx context.Context) (processed int, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveSync(err, processed, started)
	}()

	current, err := s.source.CurrentEpoch(ctx)
	if err != nil {
		s.logger.Error("current epoch lookup failed", zap.Error(err))
		return 0, err
	}
	cutoffMs := s.cutoff.UnixMilli()

	failures := 0
	for n := current; ; n-- {
		epoch, fetchErr := s.source.Epoch(ctx, n)
		switch {
		case fetchErr != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return processed, ctxErr
			}
			failures++
			s.logger.Warn("epoch fetch failed, skipping",
				zap.Uint64("epoch", n),
				zap.Int("attempt", failures),
				zap.Error(fetchErr))
			if failures >= s.maxFailures {
				return processed, fmt.Errorf("%d consecutive epoch fetches failed at epoch %d: %w", failures, n, fetchErr)
			}
		case epoch.StartTime < cutoffMs:
			s.logger.Info("epoch walk reached cutoff",
				zap.Uint64("epoch", n),
				zap.Int("processed", processed))
			return processed, nil
		default:
			failures = 0
			if err = s.repo.UpsertEpoch(ctx, epoch); err != nil {
				return processed, fmt.Errorf("upsert epoch %d: %w", n, err)
			}
			processed++
		}

		if n == 0 {
			break
		}
		if err = s.sleep(ctx, s.delay); err != nil {
			return processed, err
		}
	}

	s.logger.Info("epoch walk reached genesis", zap.Int("processed", processed))
	return processed, nil
}

// RecentEpochs fetches the newest count epochs without persisting them, newest first.
// Epochs that fail to load are left out.
func (s *EpochSync) RecentEpochs(ctx context.Context, count int) ([]model.EpochRecord, error) {
	if count <= 0 {
		return nil, nil
	}
	current, err := s.source.CurrentEpoch(ctx)
	if err != nil {
		return nil, err
	}

	numbers := make([]uint64, 0, count)
	for i := 0; i < count; i++ {
		numbers = append(numbers, current-uint64(i))
		if current == uint64(i) {
			break
		}
	}

	fetched := make([]*model.EpochRecord, len(numbers))
	for start := 0; start < len(numbers); start += s.recentBatch {
		end := min(start+s.recentBatch, len(numbers))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				epoch, err := s.source.Epoch(gctx, numbers[i])
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					s.logger.Warn("recent epoch fetch failed", zap.Uint64("epoch", numbers[i]), zap.Error(err))
					return nil
				}
				fetched[i] = &epoch
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := make([]model.EpochRecord, 0, len(fetched))
	for _, e := range fetched {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out, nil
}
