package chain

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrNotConfigured marks a provider that lacks credentials or an endpoint.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrAllProvidersFailed is returned when every provider in a chain failed or was skipped.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// Provider is one strategy in an ordered fallback chain.
type Provider[K, T any] struct {
	Name string
	// Enabled gates the provider per call; nil means always enabled.
	Enabled func(ctx context.Context) bool
	Call    func(ctx context.Context, key K) (T, error)
}

// Fallback tries its providers in order until one succeeds.
type Fallback[K, T any] struct {
	providers []Provider[K, T]
	logger    *zap.Logger
}

// NewFallback builds a chain from providers in priority order.
func NewFallback[K, T any](logger *zap.Logger, providers ...Provider[K, T]) *Fallback[K, T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback[K, T]{providers: providers, logger: logger}
}

// Get returns the first successful value and the name of the provider that served it.
func (f *Fallback[K, T]) Get(ctx context.Context, key K) (T, string, error) {
	var zero T
	errs := make([]error, 0, len(f.providers)+1)
	errs = append(errs, ErrAllProvidersFailed)

	for _, p := range f.providers {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		if p.Enabled != nil && !p.Enabled(ctx) {
			continue
		}
		value, err := p.Call(ctx, key)
		if err == nil {
			return value, p.Name, nil
		}
		f.logger.Warn("provider failed, falling through",
			zap.String("source", p.Name),
			zap.Any("key", key),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
	}

	return zero, "", errors.Join(errs...)
}
