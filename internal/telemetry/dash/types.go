package dash

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// RawRPC is the subset of the btcd rpcclient used against Dash Core.
	RawRPC interface {
		GetBlockCount() (int64, error)
		RawRequest(method string, params []json.RawMessage) (json.RawMessage, error)
	}
	// RPCMetrics records metrics for RPC calls.
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
	// HTTPMetrics records metrics for public API calls.
	HTTPMetrics interface {
		Observe(source, operation string, err error, started time.Time)
	}
	// SelectorMetrics records privileged source verdicts.
	SelectorMetrics interface {
		ObserveVerdict(available bool)
	}
	// Prober checks liveness of the privileged source.
	Prober interface {
		Probe(ctx context.Context) error
	}
	// Availability reports whether the privileged source should be preferred.
	Availability interface {
		Available(ctx context.Context) bool
	}
	// BlockSource returns one normalized block.
	BlockSource interface {
		Name() string
		FetchBlock(ctx context.Context, height uint64) (model.BlockRecord, error)
	}
	// HeightSource returns the current chain tip height.
	HeightSource interface {
		Name() string
		LatestHeight(ctx context.Context) (uint64, error)
	}
)
