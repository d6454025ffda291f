// Package dash implements the Dash Core and Platform upstream sources.
package dash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/dashpulse-backend/pkg/safe"
)

var blockStatsFields = []string{"blockhash", "height", "time", "txs", "totalfee", "subsidy"}

// BlockStatsResult is the getblockstats reply. Amounts are in duffs.
type BlockStatsResult struct {
	BlockHash string `json:"blockhash"`
	Height    int64  `json:"height"`
	Time      int64  `json:"time"`
	Txs       int64  `json:"txs"`
	TotalFee  int64  `json:"totalfee"`
	Subsidy   int64  `json:"subsidy"`
}

// MasternodeCountResult is the `masternode count` reply.
type MasternodeCountResult struct {
	Total    uint32 `json:"total"`
	Enabled  uint32 `json:"enabled"`
	Detailed struct {
		Regular struct {
			Total   uint32 `json:"total"`
			Enabled uint32 `json:"enabled"`
		} `json:"regular"`
		Evo struct {
			Total   uint32 `json:"total"`
			Enabled uint32 `json:"enabled"`
		} `json:"evo"`
	} `json:"detailed"`
}

// RPCClient wraps the btcd rpcclient with metrics instrumentation and context deadlines.
type RPCClient struct {
	client     RawRPC
	rpcMetrics RPCMetrics
	timeout    time.Duration
}

// NewRPCClient constructs an instrumented RPC client. timeout bounds every call unless the caller's context is shorter.
func NewRPCClient(client RawRPC, rpcMetrics RPCMetrics, timeout time.Duration) *RPCClient {
	return &RPCClient{
		client:     client,
		rpcMetrics: rpcMetrics,
		timeout:    timeout,
	}
}

// DialRPC builds a Dash Core JSON-RPC client in HTTP POST mode. An empty URL means the source is not configured.
func DialRPC(rawURL, user, password string) (*rpcclient.Client, error) {
	if rawURL == "" {
		return nil, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         parsed.Host + parsed.Path,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   parsed.Scheme == "http",
	}, nil)
}

// BlockCount returns the height of the node's best chain.
func (r *RPCClient) BlockCount(ctx context.Context) (count int64, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block_count", err, started)
	}()
	return withDeadline(ctx, r.timeout, r.client.GetBlockCount)
}

// BlockStats returns per-block statistics for height.
func (r *RPCClient) BlockStats(ctx context.Context, height uint64) (res BlockStatsResult, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block_stats", err, started)
	}()

	h, err := safe.Int64(height)
	if err != nil {
		return BlockStatsResult{}, fmt.Errorf("block height %d exceeds rpc limit: %w", height, err)
	}
	params, err := rawParams(h, blockStatsFields)
	if err != nil {
		return BlockStatsResult{}, err
	}
	raw, err := withDeadline(ctx, r.timeout, func() (json.RawMessage, error) {
		return r.client.RawRequest("getblockstats", params)
	})
	if err != nil {
		return BlockStatsResult{}, err
	}
	if err = json.Unmarshal(raw, &res); err != nil {
		return BlockStatsResult{}, fmt.Errorf("decode getblockstats: %w", err)
	}
	return res, nil
}

// MasternodeCount returns the masternode list size.
func (r *RPCClient) MasternodeCount(ctx context.Context) (res MasternodeCountResult, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("masternode_count", err, started)
	}()

	params, err := rawParams("count")
	if err != nil {
		return MasternodeCountResult{}, err
	}
	raw, err := withDeadline(ctx, r.timeout, func() (json.RawMessage, error) {
		return r.client.RawRequest("masternode", params)
	})
	if err != nil {
		return MasternodeCountResult{}, err
	}
	if err = json.Unmarshal(raw, &res); err != nil {
		return MasternodeCountResult{}, fmt.Errorf("decode masternode count: %w", err)
	}
	return res, nil
}

// Probe is a lightweight liveness check.
func (r *RPCClient) Probe(ctx context.Context) error {
	_, err := r.BlockCount(ctx)
	return err
}

func rawParams(values ...any) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode rpc param: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

// withDeadline runs a blocking rpcclient call and gives up when ctx or timeout expires.
// The rpcclient API takes no context, so an abandoned call finishes in the background.
func withDeadline[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}
