package dash

import (
	"context"
	"sync"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/clock"
	"go.uber.org/zap"
)

const (
	// DefaultProbeTimeout bounds a single liveness probe.
	DefaultProbeTimeout = 8 * time.Second
	// DefaultVerdictTTL is how long a probe verdict is trusted.
	DefaultVerdictTTL = 5 * time.Minute
)

type verdict int

const (
	verdictUnknown verdict = iota
	verdictAvailable
	verdictUnavailable
)

// SelectorOptions tunes probe behaviour. Zero values fall back to the defaults.
type SelectorOptions struct {
	ProbeTimeout time.Duration
	TTL          time.Duration
	Now          clock.Now
}

// Selector decides whether the privileged source should be preferred.
// The verdict is cached per instance and re-probed after TTL.
type Selector struct {
	prober  Prober
	metrics SelectorMetrics
	logger  *zap.Logger
	timeout time.Duration
	ttl     time.Duration
	now     clock.Now

	mu         sync.Mutex
	verdict    verdict
	recordedAt time.Time
}

// NewSelector creates a selector. A nil prober means the privileged source is not configured.
func NewSelector(prober Prober, metrics SelectorMetrics, logger *zap.Logger, opts SelectorOptions) *Selector {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultVerdictTTL
	}
	if opts.Now == nil {
		opts.Now = clock.System
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		prober:  prober,
		metrics: metrics,
		logger:  logger.Named("selector"),
		timeout: opts.ProbeTimeout,
		ttl:     opts.TTL,
		now:     opts.Now,
	}
}

// Available reports whether the privileged source is usable. It never returns an error:
// any probe failure is a false verdict. Concurrent callers wait for a single probe.
func (s *Selector) Available(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.verdict != verdictUnknown && now.Sub(s.recordedAt) < s.ttl {
		return s.verdict == verdictAvailable
	}

	if s.prober == nil {
		s.record(false, now)
		s.logger.Info("privileged source not configured, using public sources")
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.prober.Probe(probeCtx)
	if err != nil && ctx.Err() != nil {
		// caller went away, the probe says nothing about the node
		return false
	}

	s.record(err == nil, s.now())
	if err != nil {
		s.logger.Warn("privileged source probe failed, using public sources",
			zap.Duration("timeout", s.timeout),
			zap.Error(err))
		return false
	}
	s.logger.Info("privileged source available")
	return true
}

func (s *Selector) record(available bool, at time.Time) {
	s.verdict = verdictUnavailable
	if available {
		s.verdict = verdictAvailable
	}
	s.recordedAt = at
	if s.metrics != nil {
		s.metrics.ObserveVerdict(available)
	}
}
