package syncer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/clock"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

type (
	progressReporter interface {
		Progress() model.BackfillProgress
	}
	masternodeSnapshot interface {
		Counts(ctx context.Context) model.MasternodeCounts
	}
	recentEpochs interface {
		RecentEpochs(ctx context.Context, count int) ([]model.EpochRecord, error)
	}
)

// Query is the read side used by the transport layer.
type Query struct {
	repo        Repository
	backfill    progressReporter
	masternodes masternodeSnapshot
	epochs      recentEpochs
	now         clock.Now
}

func NewQuery(repo Repository, backfill *Backfill, masternodes *Masternodes, epochs *EpochSync) *Query {
	return &Query{
		repo:        repo,
		backfill:    backfill,
		masternodes: masternodes,
		epochs:      epochs,
		now:         clock.System,
	}
}

// Blocks returns cached blocks newer than window, oldest first.
func (q *Query) Blocks(ctx context.Context, window time.Duration) ([]model.BlockRecord, error) {
	return q.repo.BlocksSince(ctx, q.now().Add(-window).Unix())
}

// BlocksSince returns cached blocks at or after the unix time since.
func (q *Query) BlocksSince(ctx context.Context, since int64) ([]model.BlockRecord, error) {
	return q.repo.BlocksSince(ctx, since)
}

// Epochs returns cached epochs that started within window.
func (q *Query) Epochs(ctx context.Context, window time.Duration) ([]model.EpochRecord, error) {
	return q.repo.EpochsSince(ctx, q.now().Add(-window).UnixMilli())
}

func (q *Query) RecentEpochs(ctx context.Context, count int) ([]model.EpochRecord, error) {
	return q.epochs.RecentEpochs(ctx, count)
}

func (q *Query) Range(ctx context.Context) (model.HeightRange, error) {
	return q.repo.HeightRange(ctx)
}

func (q *Query) FeeStats(ctx context.Context, window time.Duration) (model.FeeStats, error) {
	return q.repo.FeeStatsSince(ctx, q.now().Add(-window).Unix())
}

func (q *Query) Progress() model.BackfillProgress {
	return q.backfill.Progress()
}

func (q *Query) Masternodes(ctx context.Context) model.MasternodeCounts {
	return q.masternodes.Counts(ctx)
}
