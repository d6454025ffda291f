package transport

import (
	"context"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Query interface {
		Blocks(ctx context.Context, window time.Duration) ([]model.BlockRecord, error)
		BlocksSince(ctx context.Context, since int64) ([]model.BlockRecord, error)
		Epochs(ctx context.Context, window time.Duration) ([]model.EpochRecord, error)
		RecentEpochs(ctx context.Context, count int) ([]model.EpochRecord, error)
		Range(ctx context.Context) (model.HeightRange, error)
		FeeStats(ctx context.Context, window time.Duration) (model.FeeStats, error)
		Progress() model.BackfillProgress
		Masternodes(ctx context.Context) model.MasternodeCounts
	}
	ProgressReader interface {
		Progress() model.BackfillProgress
	}
)
