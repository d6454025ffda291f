// Package memory implements the telemetry cache store in process memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

// Repository is a mutex-guarded cache store with the same semantics as the ClickHouse one.
// Contents are lost on restart.
type Repository struct {
	mu          sync.RWMutex
	blocks      map[string]model.BlockRecord
	epochs      map[uint64]model.EpochRecord
	checkpoints map[string]model.Checkpoint
}

func NewRepository() *Repository {
	return &Repository{
		blocks:      make(map[string]model.BlockRecord),
		epochs:      make(map[uint64]model.EpochRecord),
		checkpoints: make(map[string]model.Checkpoint),
	}
}

// InsertBlock stores block unless its hash is present and reports whether it was written.
func (r *Repository) InsertBlock(ctx context.Context, block model.BlockRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blocks[block.Hash]; ok {
		return false, nil
	}
	r.blocks[block.Hash] = block
	return true, nil
}

// UpsertEpoch inserts epoch or refreshes fees and end time of an existing one.
func (r *Repository) UpsertEpoch(ctx context.Context, epoch model.EpochRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.epochs[epoch.Number]; ok {
		existing.TotalCollectedFees = epoch.TotalCollectedFees
		existing.EndTime = epoch.EndTime
		r.epochs[epoch.Number] = existing
		return nil
	}
	if epoch.FeeMultiplier == 0 {
		epoch.FeeMultiplier = model.DefaultFeeMultiplier
	}
	r.epochs[epoch.Number] = epoch
	return nil
}

func (r *Repository) BlocksSince(ctx context.Context, since int64) ([]model.BlockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.BlockRecord
	for _, b := range r.blocks {
		if b.Time >= since {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Height < out[j].Height
	})
	return out, nil
}

func (r *Repository) EpochsSince(ctx context.Context, sinceMs int64) ([]model.EpochRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.EpochRecord
	for _, e := range r.epochs {
		if e.StartTime >= sinceMs {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *Repository) HeightRange(ctx context.Context) (model.HeightRange, error) {
	if err := ctx.Err(); err != nil {
		return model.HeightRange{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var hr model.HeightRange
	for _, b := range r.blocks {
		if hr.Count == 0 || b.Height < hr.Min {
			hr.Min = b.Height
		}
		if b.Height > hr.Max {
			hr.Max = b.Height
		}
		hr.Count++
	}
	return hr, nil
}

func (r *Repository) Checkpoint(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp, ok := r.checkpoints[key]
	if !ok {
		return "", model.ErrCheckpointNotFound
	}
	return cp.Value, nil
}

func (r *Repository) SetCheckpoint(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checkpoints[key] = model.Checkpoint{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return nil
}

func (r *Repository) FeeStatsSince(ctx context.Context, since int64) (model.FeeStats, error) {
	blocks, err := r.BlocksSince(ctx, since)
	if err != nil {
		return model.FeeStats{}, err
	}
	var stats model.FeeStats
	for i, b := range blocks {
		if i == 0 {
			stats.FirstTime = b.Time
		}
		stats.LastTime = b.Time
		stats.Blocks++
		stats.TotalFees += b.TotalFees
		stats.TotalReward += b.Reward
	}
	if stats.Blocks > 0 {
		stats.AvgFees = stats.TotalFees / float64(stats.Blocks)
	}
	return stats, nil
}

// Ping always succeeds.
func (r *Repository) Ping(context.Context) error {
	return nil
}

func (r *Repository) Close() error {
	return nil
}
