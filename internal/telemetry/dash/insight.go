package dash

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/chain"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
	"github.com/goodnatureofminers/dashpulse-backend/pkg/safe"
)

type insightBlockIndex struct {
	BlockHash string `json:"blockHash"`
}

type insightBlock struct {
	Hash   string   `json:"hash"`
	Height uint64   `json:"height"`
	Time   int64    `json:"time"`
	Tx     []string `json:"tx"`
}

type insightTx struct {
	TxID       string `json:"txid"`
	IsCoinBase bool   `json:"isCoinBase"`
	Vout       []struct {
		Value string `json:"value"`
	} `json:"vout"`
}

type insightStatus struct {
	Info struct {
		Blocks uint64 `json:"blocks"`
	} `json:"info"`
}

// Insight is the public block source backed by an Insight API.
// It has no aggregate fee fields, so fees are rebuilt from the coinbase transaction.
type Insight struct {
	http   *HTTPClient
	params chain.Params
}

// NewInsight creates an Insight source.
func NewInsight(http *HTTPClient, params chain.Params) *Insight {
	return &Insight{http: http, params: params}
}

func (s *Insight) Name() string {
	return s.http.Name()
}

// LatestHeight returns the tip height reported by /status.
func (s *Insight) LatestHeight(ctx context.Context) (uint64, error) {
	var status insightStatus
	if err := s.http.getJSON(ctx, "status", "/status?q=getInfo", &status); err != nil {
		return 0, err
	}
	if status.Info.Blocks == 0 {
		return 0, errors.New("insight status reported zero blocks")
	}
	return status.Info.Blocks, nil
}

// FetchBlock resolves the hash for height, loads the block and, outside superblocks, its coinbase.
func (s *Insight) FetchBlock(ctx context.Context, height uint64) (model.BlockRecord, error) {
	var index insightBlockIndex
	if err := s.http.getJSON(ctx, "block_index", "/block-index/"+strconv.FormatUint(height, 10), &index); err != nil {
		return model.BlockRecord{}, fmt.Errorf("block index %d: %w", height, err)
	}
	if _, err := chainhash.NewHashFromStr(index.BlockHash); err != nil || index.BlockHash == "" {
		return model.BlockRecord{}, fmt.Errorf("block index %d returned invalid hash %q", height, index.BlockHash)
	}

	var block insightBlock
	if err := s.http.getJSON(ctx, "block", "/block/"+index.BlockHash, &block); err != nil {
		return model.BlockRecord{}, fmt.Errorf("block %s: %w", index.BlockHash, err)
	}
	if block.Height != height {
		return model.BlockRecord{}, fmt.Errorf("block %s height mismatch: asked %d, got %d", block.Hash, height, block.Height)
	}
	txCount, err := safe.Uint32(len(block.Tx))
	if err != nil {
		return model.BlockRecord{}, fmt.Errorf("block %d tx count overflow: %w", height, err)
	}

	if s.params.IsSuperblock(height) || len(block.Tx) == 0 {
		return s.params.FromCoinbase(block.Hash, height, block.Time, txCount, 0), nil
	}

	coinbase, err := s.coinbaseValue(ctx, block.Tx[0])
	if err != nil {
		return model.BlockRecord{}, fmt.Errorf("block %d coinbase: %w", height, err)
	}
	return s.params.FromCoinbase(block.Hash, height, block.Time, txCount, coinbase), nil
}

func (s *Insight) coinbaseValue(ctx context.Context, txid string) (float64, error) {
	var tx insightTx
	if err := s.http.getJSON(ctx, "tx", "/tx/"+txid, &tx); err != nil {
		return 0, err
	}
	if !tx.IsCoinBase {
		return 0, fmt.Errorf("tx %s is not a coinbase", txid)
	}

	var total btcutil.Amount
	for i, out := range tx.Vout {
		value, err := strconv.ParseFloat(out.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("tx %s vout %d value %q: %w", txid, i, out.Value, err)
		}
		amt, err := btcutil.NewAmount(value)
		if err != nil {
			return 0, fmt.Errorf("tx %s vout %d amount: %w", txid, i, err)
		}
		total += amt
	}
	return total.ToBTC(), nil
}
