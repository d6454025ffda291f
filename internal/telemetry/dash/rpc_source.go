package dash

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/chain"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
	"github.com/goodnatureofminers/dashpulse-backend/pkg/safe"
)

// RPCSource reads blocks and the chain tip from a Dash Core node.
type RPCSource struct {
	rpc    *RPCClient
	params chain.Params
}

// NewRPCSource creates the privileged source.
func NewRPCSource(rpc *RPCClient, params chain.Params) *RPCSource {
	return &RPCSource{rpc: rpc, params: params}
}

// Name implements BlockSource.
func (s *RPCSource) Name() string {
	return "rpc"
}

// LatestHeight returns the node's block count.
func (s *RPCSource) LatestHeight(ctx context.Context) (uint64, error) {
	count, err := s.rpc.BlockCount(ctx)
	if err != nil {
		return 0, err
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// FetchBlock queries getblockstats and converts duff amounts to DASH.
func (s *RPCSource) FetchBlock(ctx context.Context, height uint64) (model.BlockRecord, error) {
	stats, err := s.rpc.BlockStats(ctx, height)
	if err != nil {
		return model.BlockRecord{}, fmt.Errorf("get block stats at height %d: %w", height, err)
	}
	if stats.Height >= 0 && uint64(stats.Height) != height {
		return model.BlockRecord{}, fmt.Errorf("block stats height mismatch: asked %d, got %d", height, stats.Height)
	}
	if _, err := chainhash.NewHashFromStr(stats.BlockHash); err != nil || stats.BlockHash == "" {
		return model.BlockRecord{}, fmt.Errorf("block %d invalid hash %q", height, stats.BlockHash)
	}
	txCount, err := safe.Uint32(stats.Txs)
	if err != nil {
		return model.BlockRecord{}, fmt.Errorf("block %d tx count overflow: %w", height, err)
	}

	return s.params.FromBlockStats(
		stats.BlockHash,
		height,
		stats.Time,
		txCount,
		btcutil.Amount(stats.TotalFee).ToBTC(),
		btcutil.Amount(stats.Subsidy).ToBTC(),
	), nil
}

// Counts returns the node's masternode list size.
func (s *RPCSource) Counts(ctx context.Context) (model.MasternodeCounts, error) {
	res, err := s.rpc.MasternodeCount(ctx)
	if err != nil {
		return model.MasternodeCounts{}, err
	}
	if res.Total == 0 {
		return model.MasternodeCounts{}, errors.New("node reported zero masternodes")
	}
	return res.MasternodeCounts(), nil
}
