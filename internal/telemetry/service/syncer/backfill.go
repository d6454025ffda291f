package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/clock"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
	"github.com/goodnatureofminers/dashpulse-backend/pkg/workerpool"
	"go.uber.org/zap"
)

// ErrNothingToSeed is returned when the cache is empty and the tip block cannot be fetched.
var ErrNothingToSeed = errors.New("backfill has no block to start from")

// BackfillConfig holds the retention settings of the backward walk.
type BackfillConfig struct {
	// Cutoff is the oldest block time kept; older fetched blocks are discarded.
	Cutoff time.Time
	// FloorHeight is the target used when the cache is empty.
	FloorHeight uint64
	// BlockInterval is the average block time used to estimate the target height.
	BlockInterval time.Duration
}

// Backfill walks backward from the oldest cached block to a persisted target height.
// Only one walk runs per instance; Progress can be read at any time.
type Backfill struct {
	repo    Repository
	fetcher BlockFetcher
	tip     TipSource
	metrics BackfillMetrics
	logger  *zap.Logger
	sleep   func(context.Context, time.Duration) error
	now     clock.Now
	cfg     BackfillConfig

	privilegedBatch   int
	publicBatch       int
	privilegedBackoff time.Duration
	publicBackoff     time.Duration
	maxBackoffFactor  int
	checkpointEvery   int
	gapRounds         int

	running atomic.Bool
	stop    atomic.Bool

	mu       sync.Mutex
	progress model.BackfillProgress

	// walk state, owned by the goroutine holding the running flag
	target          uint64
	startOldest     uint64
	oldest          uint64
	failures        int
	sinceCheckpoint int
	gaps            map[uint64]struct{}
}

func NewBackfill(
	repo Repository,
	fetcher BlockFetcher,
	tip TipSource,
	metrics BackfillMetrics,
	cfg BackfillConfig,
	logger *zap.Logger,
) (*Backfill, error) {
	if metrics == nil {
		return nil, errors.New("backfill metrics is required")
	}
	if cfg.Cutoff.IsZero() {
		cfg.Cutoff = DefaultCutoff
	}
	if cfg.FloorHeight == 0 {
		cfg.FloorHeight = DefaultFloorHeight
	}
	if cfg.BlockInterval <= 0 {
		cfg.BlockInterval = DefaultBlockInterval
	}
	return &Backfill{
		repo:              repo,
		fetcher:           fetcher,
		tip:               tip,
		metrics:           metrics,
		logger:            logger.Named("backfill"),
		sleep:             clock.SleepWithContext,
		now:               clock.System,
		cfg:               cfg,
		privilegedBatch:   backfillPrivilegedBatch,
		publicBatch:       backfillPublicBatch,
		privilegedBackoff: backfillPrivilegedBackoff,
		publicBackoff:     backfillPublicBackoff,
		maxBackoffFactor:  backfillMaxBackoffFactor,
		checkpointEvery:   backfillCheckpointEvery,
		gapRounds:         backfillGapRounds,
		progress:          model.BackfillProgress{Status: model.BackfillIdle},
	}, nil
}

// Progress returns a snapshot of the walk.
func (b *Backfill) Progress() model.BackfillProgress {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progress
}

// Stop asks a running walk to pause after the current batch.
func (b *Backfill) Stop() {
	b.stop.Store(true)
}

// Start runs the walk to completion, pause or error. A call made while a walk is running returns nil immediately.
func (b *Backfill) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		b.logger.Info("backfill already running")
		return nil
	}
	defer b.running.Store(false)
	b.stop.Store(false)

	done, err := b.prepare(ctx)
	if err != nil {
		b.fail(err)
		return err
	}
	if done && len(b.gaps) == 0 {
		return b.finish(ctx)
	}

	b.update(func(p *model.BackfillProgress) {
		p.Status = model.BackfillRunning
		p.Running = true
		p.LastError = ""
	})
	b.logger.Info("backfill started",
		zap.Uint64("oldest", b.oldest),
		zap.Uint64("target", b.target))

	for !done {
		if b.pauseRequested(ctx) {
			return b.pause(ctx)
		}
		done, err = b.step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return b.pause(ctx)
			}
			b.fail(err)
			return err
		}
	}

	return b.finish(ctx)
}

// prepare resolves the target, seeds an empty cache and positions the cursor.
// It reports true when nothing is left to walk.
func (b *Backfill) prepare(ctx context.Context) (bool, error) {
	hr, err := b.repo.HeightRange(ctx)
	if err != nil {
		return false, fmt.Errorf("read cached height range: %w", err)
	}
	if b.target, err = b.resolveTarget(ctx, hr); err != nil {
		return false, err
	}
	if hr.Empty() {
		if hr, err = b.seed(ctx); err != nil {
			return false, err
		}
	}
	if b.gaps, err = b.loadGaps(ctx); err != nil {
		return false, err
	}

	b.oldest = hr.Min
	cp, err := b.uintCheckpoint(ctx, model.CheckpointBackfillOldest)
	switch {
	case errors.Is(err, model.ErrCheckpointNotFound):
	case err != nil:
		return false, err
	case cp < b.oldest:
		b.oldest = cp
	}
	b.startOldest = b.oldest
	b.failures = 0
	b.sinceCheckpoint = 0

	var needed uint64
	if b.oldest > b.target {
		needed = b.oldest - b.target
	}
	b.update(func(p *model.BackfillProgress) {
		p.TargetHeight = b.target
		p.OldestHeight = b.oldest
		p.TotalNeeded = needed
		p.TotalDone = 0
		p.Gaps = len(b.gaps)
	})
	return b.oldest <= b.target, nil
}

func (b *Backfill) resolveTarget(ctx context.Context, hr model.HeightRange) (uint64, error) {
	target, err := b.uintCheckpoint(ctx, model.CheckpointBackfillTarget)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, model.ErrCheckpointNotFound) {
		return 0, err
	}

	target = b.cfg.FloorHeight
	if !hr.Empty() {
		var behind uint64
		if elapsed := b.now().Sub(b.cfg.Cutoff); elapsed > 0 {
			behind = uint64(elapsed / b.cfg.BlockInterval)
		}
		target = 0
		if hr.Max > behind {
			target = hr.Max - behind
		}
	}
	if err = b.repo.SetCheckpoint(ctx, model.CheckpointBackfillTarget, strconv.FormatUint(target, 10)); err != nil {
		return 0, fmt.Errorf("persist backfill target: %w", err)
	}
	b.logger.Info("backfill target computed", zap.Uint64("target", target), zap.Uint64("cached_max", hr.Max))
	return target, nil
}

func (b *Backfill) seed(ctx context.Context) (model.HeightRange, error) {
	tip, err := b.tip.LatestHeight(ctx)
	if err != nil {
		return model.HeightRange{}, fmt.Errorf("%w: chain tip: %v", ErrNothingToSeed, err)
	}
	block, err := b.fetcher.FetchBlock(ctx, tip)
	if err != nil {
		return model.HeightRange{}, fmt.Errorf("%w: fetch tip block %d: %v", ErrNothingToSeed, tip, err)
	}
	if _, err = b.repo.InsertBlock(ctx, block); err != nil {
		return model.HeightRange{}, fmt.Errorf("%w: insert tip block %d: %v", ErrNothingToSeed, tip, err)
	}
	b.logger.Info("seeded empty cache", zap.Uint64("height", tip))
	return model.HeightRange{Min: tip, Max: tip, Count: 1}, nil
}

// step processes one batch below the cursor and reports whether the target was reached.
func (b *Backfill) step(ctx context.Context) (bool, error) {
	privileged := b.fetcher.Privileged(ctx)
	size, base := b.publicBatch, b.publicBackoff
	if privileged {
		size, base = b.privilegedBatch, b.privilegedBackoff
	}

	high := b.oldest - 1
	low := b.target
	if high-b.target+1 > uint64(size) {
		low = high - uint64(size) + 1
	}
	heights := make([]uint64, 0, high-low+1)
	for h := high; ; h-- {
		heights = append(heights, h)
		if h == low {
			break
		}
	}

	started := time.Now()
	inserted, failed := b.fetchAndStore(ctx, heights, size)
	if err := ctx.Err(); err != nil {
		b.metrics.ObserveBatch(err, len(heights), len(failed), started)
		return false, err
	}

	if len(failed) == len(heights) {
		b.failures++
		wait := base * time.Duration(min(b.failures, b.maxBackoffFactor))
		err := fmt.Errorf("all %d fetches failed", len(heights))
		b.metrics.ObserveBatch(err, len(heights), len(failed), started)
		b.metrics.ObserveBackoff(wait)
		b.logger.Warn("batch failed, backing off",
			zap.Uint64("from", high),
			zap.Uint64("to", low),
			zap.Int("attempt", b.failures),
			zap.Duration("sleep", wait))
		return false, b.sleep(ctx, wait)
	}
	b.metrics.ObserveBatch(nil, len(heights), len(failed), started)

	b.failures = 0
	for _, h := range failed {
		b.gaps[h] = struct{}{}
	}
	if len(failed) > 0 {
		b.logger.Warn("batch partially failed, heights recorded as gaps",
			zap.Uint64s("heights", failed))
	}

	b.oldest = low
	b.sinceCheckpoint += inserted
	if b.sinceCheckpoint >= b.checkpointEvery {
		if err := b.persist(ctx); err != nil {
			return false, err
		}
		b.sinceCheckpoint = 0
	}
	b.update(func(p *model.BackfillProgress) {
		p.OldestHeight = low
		p.TotalDone = b.startOldest - low
		p.Gaps = len(b.gaps)
	})

	return low <= b.target, nil
}

// fetchAndStore fetches heights concurrently and inserts blocks not older than the cutoff.
// It returns the number of new rows and the heights that could not be fetched or stored.
func (b *Backfill) fetchAndStore(ctx context.Context, heights []uint64, workers int) (int, []uint64) {
	cutoff := b.cfg.Cutoff.Unix()
	inserted := 0
	var failed []uint64

	results := workerpool.Settle(ctx, workers, heights, b.fetcher.FetchBlock)
	for _, r := range results {
		if r.Err != nil {
			b.logger.Debug("block fetch failed", zap.Uint64("height", r.Item), zap.Error(r.Err))
			failed = append(failed, r.Item)
			continue
		}
		if r.Value.Time < cutoff {
			continue
		}
		ok, err := b.repo.InsertBlock(ctx, r.Value)
		if err != nil {
			b.logger.Warn("insert block failed", zap.Uint64("height", r.Item), zap.Error(err))
			failed = append(failed, r.Item)
			continue
		}
		if ok {
			inserted++
		}
	}
	return inserted, failed
}

// fillGaps retries heights skipped by partially failed batches. Survivors are persisted for the next run.
func (b *Backfill) fillGaps(ctx context.Context) {
	if len(b.gaps) == 0 {
		return
	}
	size, base := b.publicBatch, b.publicBackoff
	if b.fetcher.Privileged(ctx) {
		size, base = b.privilegedBatch, b.privilegedBackoff
	}
	b.logger.Info("retrying gaps", zap.Int("gaps", len(b.gaps)))

	for round := 1; round <= b.gapRounds && len(b.gaps) > 0; round++ {
		pending := b.sortedGaps()
		for i := 0; i < len(pending); i += size {
			if b.pauseRequested(ctx) {
				return
			}
			batch := pending[i:min(i+size, len(pending))]
			_, failed := b.fetchAndStore(ctx, batch, size)
			still := make(map[uint64]struct{}, len(failed))
			for _, h := range failed {
				still[h] = struct{}{}
			}
			for _, h := range batch {
				if _, ok := still[h]; !ok {
					delete(b.gaps, h)
				}
			}
		}
		b.update(func(p *model.BackfillProgress) { p.Gaps = len(b.gaps) })

		if len(b.gaps) > 0 && round < b.gapRounds {
			wait := base * time.Duration(min(round, b.maxBackoffFactor))
			b.metrics.ObserveBackoff(wait)
			b.logger.Warn("gaps remain, backing off",
				zap.Int("gaps", len(b.gaps)),
				zap.Int("attempt", round),
				zap.Duration("sleep", wait))
			if err := b.sleep(ctx, wait); err != nil {
				return
			}
		}
	}

	if len(b.gaps) > 0 {
		b.logger.Warn("gaps left after retries, kept for next run", zap.Uint64s("heights", b.sortedGaps()))
	}
}

func (b *Backfill) finish(ctx context.Context) error {
	b.fillGaps(ctx)
	if b.pauseRequested(ctx) {
		return b.pause(ctx)
	}
	if err := b.persist(ctx); err != nil {
		b.fail(err)
		return err
	}
	b.update(func(p *model.BackfillProgress) {
		p.Status = model.BackfillComplete
		p.Running = false
		p.Gaps = len(b.gaps)
	})
	b.logger.Info("backfill complete",
		zap.Uint64("oldest", b.oldest),
		zap.Uint64("target", b.target),
		zap.Int("gaps", len(b.gaps)))
	return nil
}

func (b *Backfill) pause(ctx context.Context) error {
	// ctx may already be canceled; the checkpoint still has to land
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := b.persist(persistCtx); err != nil {
		b.fail(err)
		return err
	}
	b.update(func(p *model.BackfillProgress) {
		p.Status = model.BackfillPaused
		p.Running = false
	})
	b.logger.Info("backfill paused", zap.Uint64("oldest", b.oldest))
	return nil
}

func (b *Backfill) fail(err error) {
	b.update(func(p *model.BackfillProgress) {
		p.Status = model.BackfillError
		p.Running = false
		p.LastError = err.Error()
	})
	b.logger.Error("backfill failed", zap.Uint64("oldest", b.oldest), zap.Error(err))
}

func (b *Backfill) pauseRequested(ctx context.Context) bool {
	return b.stop.Load() || ctx.Err() != nil
}

// persist writes the gap set before the oldest height, so a cursor that has moved past a gap is never stored without it.
func (b *Backfill) persist(ctx context.Context) error {
	raw, err := json.Marshal(b.sortedGaps())
	if err != nil {
		return fmt.Errorf("encode backfill gaps: %w", err)
	}
	if err = b.repo.SetCheckpoint(ctx, model.CheckpointBackfillGaps, string(raw)); err != nil {
		return fmt.Errorf("persist backfill gaps: %w", err)
	}
	if err = b.repo.SetCheckpoint(ctx, model.CheckpointBackfillOldest, strconv.FormatUint(b.oldest, 10)); err != nil {
		return fmt.Errorf("persist backfill oldest height: %w", err)
	}
	return nil
}

func (b *Backfill) loadGaps(ctx context.Context) (map[uint64]struct{}, error) {
	gaps := make(map[uint64]struct{})
	raw, err := b.repo.Checkpoint(ctx, model.CheckpointBackfillGaps)
	if errors.Is(err, model.ErrCheckpointNotFound) {
		return gaps, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backfill gaps: %w", err)
	}
	var heights []uint64
	if err = json.Unmarshal([]byte(raw), &heights); err != nil {
		b.logger.Warn("discarding unreadable gap checkpoint", zap.String("value", raw), zap.Error(err))
		return gaps, nil
	}
	for _, h := range heights {
		gaps[h] = struct{}{}
	}
	return gaps, nil
}

func (b *Backfill) uintCheckpoint(ctx context.Context, key string) (uint64, error) {
	raw, err := b.repo.Checkpoint(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrCheckpointNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("read checkpoint %s: %w", key, err)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		b.logger.Warn("ignoring malformed checkpoint", zap.String("key", key), zap.String("value", raw))
		return 0, model.ErrCheckpointNotFound
	}
	return v, nil
}

func (b *Backfill) sortedGaps() []uint64 {
	out := make([]uint64, 0, len(b.gaps))
	for h := range b.gaps {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

func (b *Backfill) update(fn func(p *model.BackfillProgress)) {
	b.mu.Lock()
	fn(&b.progress)
	snapshot := b.progress
	b.mu.Unlock()
	b.metrics.ObserveProgress(snapshot)
}
