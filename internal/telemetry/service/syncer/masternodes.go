package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/clock"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/chain"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
	"go.uber.org/zap"
)

const checkpointSource = "checkpoint"

// DefaultMasternodeCounts is served when no source and no checkpoint is available.
var DefaultMasternodeCounts = model.MasternodeCounts{
	Total:          3300,
	Enabled:        3200,
	RegularTotal:   2800,
	RegularEnabled: 2720,
	EvoTotal:       500,
	EvoEnabled:     480,
	Source:         "default",
}

// Masternodes serves a TTL-cached masternode count snapshot.
type Masternodes struct {
	repo   Repository
	chain  *chain.Fallback[struct{}, model.MasternodeCounts]
	logger *zap.Logger
	ttl    time.Duration
	now    clock.Now

	mu       sync.Mutex
	cached   model.MasternodeCounts
	cachedAt time.Time
	has      bool
}

// NewMasternodes builds the snapshot chain: rpc (when available), public, persisted checkpoint.
// rpc and public may be nil.
func NewMasternodes(
	repo Repository,
	availability Availability,
	rpc MasternodeSource,
	public MasternodeSource,
	logger *zap.Logger,
) *Masternodes {
	logger = logger.Named("masternodes")
	m := &Masternodes{
		repo:   repo,
		logger: logger,
		ttl:    masternodeTTL,
		now:    clock.System,
	}

	var providers []chain.Provider[struct{}, model.MasternodeCounts]
	if rpc != nil {
		providers = append(providers, chain.Provider[struct{}, model.MasternodeCounts]{
			Name:    "rpc",
			Enabled: availability.Available,
			Call:    counts(rpc),
		})
	}
	if public != nil {
		providers = append(providers, chain.Provider[struct{}, model.MasternodeCounts]{
			Name: "public",
			Call: counts(public),
		})
	}
	providers = append(providers, chain.Provider[struct{}, model.MasternodeCounts]{
		Name: checkpointSource,
		Call: m.fromCheckpoint,
	})
	m.chain = chain.NewFallback(logger, providers...)
	return m
}

// Counts returns the cached snapshot, refreshing it once the TTL has passed. It always returns a value.
func (m *Masternodes) Counts(ctx context.Context) model.MasternodeCounts {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.has && now.Sub(m.cachedAt) < m.ttl {
		return m.cached
	}

	snapshot, source, err := m.chain.Get(ctx, struct{}{})
	if err != nil {
		m.logger.Warn("masternode counts unavailable, serving default", zap.Error(err))
		snapshot = DefaultMasternodeCounts
		snapshot.FetchedAt = now
	} else if source != checkpointSource {
		m.persist(ctx, snapshot)
	}

	m.cached = snapshot
	m.cachedAt = now
	m.has = true
	return snapshot
}

func (m *Masternodes) fromCheckpoint(ctx context.Context, _ struct{}) (model.MasternodeCounts, error) {
	raw, err := m.repo.Checkpoint(ctx, model.CheckpointMasternodes)
	if err != nil {
		return model.MasternodeCounts{}, err
	}
	var snapshot model.MasternodeCounts
	if err = json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return model.MasternodeCounts{}, fmt.Errorf("decode masternode checkpoint: %w", err)
	}
	snapshot.Source = checkpointSource
	return snapshot, nil
}

func (m *Masternodes) persist(ctx context.Context, snapshot model.MasternodeCounts) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		m.logger.Warn("encode masternode counts", zap.Error(err))
		return
	}
	if err = m.repo.SetCheckpoint(ctx, model.CheckpointMasternodes, string(raw)); err != nil {
		m.logger.Warn("persist masternode counts", zap.Error(err))
	}
}

func counts(src MasternodeSource) func(context.Context, struct{}) (model.MasternodeCounts, error) {
	return func(ctx context.Context, _ struct{}) (model.MasternodeCounts, error) {
		return src.Counts(ctx)
	}
}
