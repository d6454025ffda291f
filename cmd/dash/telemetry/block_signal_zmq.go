//go:build zmq

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/clock"
	"github.com/pebbe/zmq4"
	"go.uber.org/zap"
)

// startBlockSignal subscribes to the node's hashblock topic and signals once per announced block.
func startBlockSignal(ctx context.Context, addr string, logger *zap.Logger) (<-chan struct{}, error) {
	if addr == "" {
		return nil, nil
	}

	sub, err := newSubscriber(addr, "hashblock")
	if err != nil {
		return nil, fmt.Errorf("connect zmq: %w", err)
	}
	// a blocked Recv has no context; the timeout lets the loop observe cancellation
	if err = sub.SetRcvtimeo(5 * time.Second); err != nil {
		sub.Close()
		return nil, fmt.Errorf("set zmq receive timeout: %w", err)
	}

	logger = logger.Named("block_signal").With(zap.String("addr", addr))
	notify := make(chan struct{}, 1)

	go func() {
		defer close(notify)
		defer sub.Close()
		for ctx.Err() == nil {
			parts, err := sub.RecvMessageBytes(0)
			if err != nil {
				// receive timeouts land here too
				logger.Debug("zmq recv failed", zap.Error(err))
				if clock.SleepWithContext(ctx, time.Second) != nil {
					return
				}
				continue
			}
			if len(parts) < 2 {
				logger.Warn("skip malformed zmq message", zap.Int("parts", len(parts)))
				continue
			}
			logger.Debug("block announced", zap.String("hash", fmt.Sprintf("%x", parts[1])))

			select {
			case notify <- struct{}{}:
			default:
			}
		}
	}()

	logger.Info("subscribed to block announcements")
	return notify, nil
}

func newSubscriber(addr string, topics ...string) (*zmq4.Socket, error) {
	sub, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, err
	}

	for _, topic := range topics {
		if err := sub.SetSubscribe(topic); err != nil {
			sub.Close()
			return nil, err
		}
	}

	if err := sub.Connect(addr); err != nil {
		sub.Close()
		return nil, err
	}
	return sub, nil
}
