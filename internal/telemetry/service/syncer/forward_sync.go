// Package syncer keeps the block and epoch cache in step with the Dash network.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/clock"
	"github.com/goodnatureofminers/dashpulse-backend/pkg/workerpool"
	"go.uber.org/zap"
)

// ForwardSync appends blocks between the cached maximum and the live chain tip.
type ForwardSync struct {
	repo            Repository
	fetcher         BlockFetcher
	tip             TipSource
	metrics         ForwardSyncMetrics
	logger          *zap.Logger
	sleep           func(context.Context, time.Duration) error
	maxBlocks       uint64
	privilegedBatch int
	publicBatch     int
	privilegedDelay time.Duration
	publicDelay     time.Duration
}

func NewForwardSync(
	repo Repository,
	fetcher BlockFetcher,
	tip TipSource,
	metrics ForwardSyncMetrics,
	logger *zap.Logger,
) (*ForwardSync, error) {
	if metrics == nil {
		return nil, errors.New("forward sync metrics is required")
	}
	return &ForwardSync{
		repo:            repo,
		fetcher:         fetcher,
		tip:             tip,
		metrics:         metrics,
		logger:          logger.Named("forward_sync"),
		sleep:           clock.SleepWithContext,
		maxBlocks:       forwardMaxBlocks,
		privilegedBatch: forwardPrivilegedBatch,
		publicBatch:     forwardPublicBatch,
		privilegedDelay: forwardPrivilegedDelay,
		publicDelay:     forwardPublicDelay,
	}, nil
}

// SyncForward fetches up to maxBlocks of the newest missing heights and returns how many rows were inserted.
// A failed tip lookup aborts the call; failed block fetches are skipped.
func (s *ForwardSync) SyncForward(ctx context.Context) (inserted int, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveSync(err, inserted, started)
	}()

	hr, err := s.repo.HeightRange(ctx)
	if err != nil {
		return 0, fmt.Errorf("read cached height range: %w", err)
	}
	tip, err := s.tip.LatestHeight(ctx)
	if err != nil {
		s.logger.Error("chain tip lookup failed", zap.Uint64("cached_max", hr.Max), zap.Error(err))
		return 0, fmt.Errorf("chain tip: %w", err)
	}
	if !hr.Empty() && tip <= hr.Max {
		s.logger.Debug("cache is current", zap.Uint64("tip", tip), zap.Uint64("cached_max", hr.Max))
		return 0, nil
	}

	heights := s.missingHeights(hr.Max, hr.Empty(), tip)
	batchSize, delay := s.publicBatch, s.publicDelay
	if s.fetcher.Privileged(ctx) {
		batchSize, delay = s.privilegedBatch, s.privilegedDelay
	}
	s.logger.Info("syncing forward",
		zap.Uint64("from", heights[0]),
		zap.Uint64("to", tip),
		zap.Int("batch_size", batchSize))

	for i := 0; i < len(heights); i += batchSize {
		end := min(i+batchSize, len(heights))
		inserted += s.processBatch(ctx, heights[i:end])
		if end == len(heights) {
			break
		}
		if err = s.sleep(ctx, delay); err != nil {
			return inserted, err
		}
	}

	s.logger.Info("forward sync finished", zap.Int("inserted", inserted), zap.Uint64("tip", tip))
	return inserted, nil
}

// missingHeights returns the newest min(tip-cachedMax, maxBlocks) heights, ascending.
func (s *ForwardSync) missingHeights(cachedMax uint64, empty bool, tip uint64) []uint64 {
	n := s.maxBlocks
	if !empty && tip-cachedMax < n {
		n = tip - cachedMax
	}
	if n > tip+1 {
		n = tip + 1
	}
	heights := make([]uint64, 0, n)
	for h := tip - n + 1; h <= tip; h++ {
		heights = append(heights, h)
	}
	return heights
}

func (s *ForwardSync) processBatch(ctx context.Context, heights []uint64) int {
	inserted := 0
	results := workerpool.Settle(ctx, len(heights), heights, s.fetcher.FetchBlock)
	for _, r := range results {
		if r.Err != nil {
			s.logger.Warn("skipping block", zap.Uint64("height", r.Item), zap.Error(r.Err))
			continue
		}
		ok, err := s.repo.InsertBlock(ctx, r.Value)
		if err != nil {
			s.logger.Warn("insert block failed", zap.Uint64("height", r.Item), zap.Error(err))
			continue
		}
		if ok {
			inserted++
		}
	}
	return inserted
}
