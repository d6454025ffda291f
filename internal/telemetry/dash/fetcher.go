package dash

import (
	"context"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/chain"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
	"go.uber.org/zap"
)

// BlockFetcher returns a normalized block from the first source that can serve it.
// The privileged source is tried first while the availability verdict allows it.
type BlockFetcher struct {
	availability Availability
	privileged   bool
	chain        *chain.Fallback[uint64, model.BlockRecord]
}

// NewBlockFetcher builds the provider chain. privileged may be nil.
func NewBlockFetcher(logger *zap.Logger, availability Availability, privileged BlockSource, public ...BlockSource) *BlockFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	providers := make([]chain.Provider[uint64, model.BlockRecord], 0, len(public)+1)
	if privileged != nil {
		providers = append(providers, chain.Provider[uint64, model.BlockRecord]{
			Name:    privileged.Name(),
			Enabled: availability.Available,
			Call:    privileged.FetchBlock,
		})
	}
	for _, src := range public {
		providers = append(providers, chain.Provider[uint64, model.BlockRecord]{
			Name: src.Name(),
			Call: src.FetchBlock,
		})
	}
	return &BlockFetcher{
		availability: availability,
		privileged:   privileged != nil,
		chain:        chain.NewFallback(logger.Named("block_fetcher"), providers...),
	}
}

// FetchBlock implements the block fetch pipeline.
func (f *BlockFetcher) FetchBlock(ctx context.Context, height uint64) (model.BlockRecord, error) {
	block, _, err := f.chain.Get(ctx, height)
	return block, err
}

// Privileged reports whether fetches will currently go to the privileged source.
// Callers use it to size their batches.
func (f *BlockFetcher) Privileged(ctx context.Context) bool {
	return f.privileged && f.availability.Available(ctx)
}

// TipSource resolves the chain tip height through an ordered provider chain.
type TipSource struct {
	chain *chain.Fallback[struct{}, uint64]
}

// NewTipSource builds the status chain. privileged may be nil.
func NewTipSource(logger *zap.Logger, availability Availability, privileged HeightSource, public ...HeightSource) *TipSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	providers := make([]chain.Provider[struct{}, uint64], 0, len(public)+1)
	if privileged != nil {
		providers = append(providers, chain.Provider[struct{}, uint64]{
			Name:    privileged.Name(),
			Enabled: availability.Available,
			Call:    latestHeight(privileged),
		})
	}
	for _, src := range public {
		providers = append(providers, chain.Provider[struct{}, uint64]{
			Name: src.Name(),
			Call: latestHeight(src),
		})
	}
	return &TipSource{chain: chain.NewFallback(logger.Named("tip_source"), providers...)}
}

// LatestHeight returns the tip height from the first source that answers.
func (t *TipSource) LatestHeight(ctx context.Context) (uint64, error) {
	height, _, err := t.chain.Get(ctx, struct{}{})
	return height, err
}

func latestHeight(src HeightSource) func(context.Context, struct{}) (uint64, error) {
	return func(ctx context.Context, _ struct{}) (uint64, error) {
		return src.LatestHeight(ctx)
	}
}
