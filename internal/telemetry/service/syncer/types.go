package syncer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Repository interface {
		// InsertBlock stores a block unless its hash exists and reports whether it wrote a row.
		// Two writers racing on one hash may both see true; the store still keeps a single row.
		InsertBlock(ctx context.Context, block model.BlockRecord) (bool, error)
		UpsertEpoch(ctx context.Context, epoch model.EpochRecord) error
		BlocksSince(ctx context.Context, since int64) ([]model.BlockRecord, error)
		EpochsSince(ctx context.Context, sinceMs int64) ([]model.EpochRecord, error)
		HeightRange(ctx context.Context) (model.HeightRange, error)
		Checkpoint(ctx context.Context, key string) (string, error)
		SetCheckpoint(ctx context.Context, key, value string) error
		FeeStatsSince(ctx context.Context, since int64) (model.FeeStats, error)
	}
	BlockFetcher interface {
		FetchBlock(ctx context.Context, height uint64) (model.BlockRecord, error)
		// Privileged reports whether the fast source is in use; it sizes batches and delays.
		Privileged(ctx context.Context) bool
	}
	TipSource interface {
		LatestHeight(ctx context.Context) (uint64, error)
	}
	EpochSource interface {
		CurrentEpoch(ctx context.Context) (uint64, error)
		Epoch(ctx context.Context, number uint64) (model.EpochRecord, error)
	}
	MasternodeSource interface {
		Counts(ctx context.Context) (model.MasternodeCounts, error)
	}
	Availability interface {
		Available(ctx context.Context) bool
	}

	ForwardSyncer interface {
		SyncForward(ctx context.Context) (int, error)
	}
	EpochSyncer interface {
		SyncAllEpochs(ctx context.Context) (int, error)
	}
	BackfillRunner interface {
		Start(ctx context.Context) error
		Stop()
	}

	ForwardSyncMetrics interface {
		ObserveSync(err error, inserted int, started time.Time)
	}
	BackfillMetrics interface {
		ObserveBatch(err error, heights, failed int, started time.Time)
		ObserveBackoff(wait time.Duration)
		ObserveProgress(progress model.BackfillProgress)
	}
	EpochSyncMetrics interface {
		ObserveSync(err error, processed int, started time.Time)
	}
)
