//go:build !zmq

package main

import (
	"context"

	"go.uber.org/zap"
)

// startBlockSignal needs the zmq build tag; without it forward sync runs on its interval only.
func startBlockSignal(_ context.Context, addr string, logger *zap.Logger) (<-chan struct{}, error) {
	if addr != "" {
		logger.Warn("zmq address set but binary built without zmq support", zap.String("addr", addr))
	}
	return nil, nil
}
