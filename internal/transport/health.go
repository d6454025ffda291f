package transport

import (
	"context"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/model"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// BackfillService is the health service name tracking the backfill controller.
const BackfillService = "dashpulse.backfill"

const defaultHealthInterval = 15 * time.Second

// HealthReporter mirrors controller state into a gRPC health server.
type HealthReporter struct {
	server   *health.Server
	progress ProgressReader
	interval time.Duration
	logger   *zap.Logger
	last     healthpb.HealthCheckResponse_ServingStatus
}

func NewHealthReporter(progress ProgressReader, logger *zap.Logger) *HealthReporter {
	h := &HealthReporter{
		server:   health.NewServer(),
		progress: progress,
		interval: defaultHealthInterval,
		logger:   logger.Named("health"),
	}
	h.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.Refresh()
	return h
}

// Server returns the health service to register on a gRPC server.
func (h *HealthReporter) Server() *health.Server {
	return h.server
}

// Refresh sets the backfill service status from the current progress.
func (h *HealthReporter) Refresh() {
	p := h.progress.Progress()
	st := healthpb.HealthCheckResponse_SERVING
	if p.Status == model.BackfillError {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	if st != h.last {
		h.logger.Info("backfill health changed",
			zap.String("status", st.String()),
			zap.String("backfill", string(p.Status)),
			zap.String("last_error", p.LastError))
		h.last = st
	}
	h.server.SetServingStatus(BackfillService, st)
}

// Run refreshes the status until ctx is done, then marks every service NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Refresh()
		}
	}
}
