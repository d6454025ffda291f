// Package transport exposes the REST read API and the gRPC health service.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	defaultBlockWindow = 24 * time.Hour
	defaultEpochWindow = 30 * 24 * time.Hour
	maxWindow          = 2 * 365 * 24 * time.Hour
	defaultRecentCount = 10
	maxRecentCount     = 50
)

var errBadRequest = errors.New("bad request")

// RESTHandler serves the cached telemetry over HTTP.
type RESTHandler struct {
	query  Query
	logger *zap.Logger
}

func NewRESTHandler(query Query, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{query: query, logger: logger.Named("rest")}
}

// Register mounts the read routes on mux.
func (h *RESTHandler) Register(mux *gwruntime.ServeMux) error {
	routes := []struct {
		path    string
		handler gwruntime.HandlerFunc
	}{
		{"/v1/blocks", h.blocks},
		{"/v1/blocks/range", h.blockRange},
		{"/v1/blocks/fees", h.feeStats},
		{"/v1/epochs", h.epochs},
		{"/v1/epochs/recent", h.recentEpochs},
		{"/v1/backfill", h.backfill},
		{"/v1/masternodes", h.masternodes},
	}
	for _, r := range routes {
		if err := mux.HandlePath(http.MethodGet, r.path, r.handler); err != nil {
			return fmt.Errorf("register %s: %w", r.path, err)
		}
	}
	return nil
}

func (h *RESTHandler) blocks(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || since < 0 {
			h.fail(w, r, fmt.Errorf("%w: since must be a unix timestamp", errBadRequest))
			return
		}
		blocks, err := h.query.BlocksSince(r.Context(), since)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.write(w, r, toBlocks(blocks))
		return
	}

	window, err := parseWindow(r, defaultBlockWindow)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	blocks, err := h.query.Blocks(r.Context(), window)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, toBlocks(blocks))
}

func (h *RESTHandler) blockRange(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	hr, err := h.query.Range(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, rangeDTO(hr))
}

func (h *RESTHandler) feeStats(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	window, err := parseWindow(r, defaultBlockWindow)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats, err := h.query.FeeStats(r.Context(), window)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, feeStatsDTO(stats))
}

func (h *RESTHandler) epochs(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	window, err := parseWindow(r, defaultEpochWindow)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	epochs, err := h.query.Epochs(r.Context(), window)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, toEpochs(epochs))
}

func (h *RESTHandler) recentEpochs(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	count := defaultRecentCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRecentCount {
			h.fail(w, r, fmt.Errorf("%w: count must be between 1 and %d", errBadRequest, maxRecentCount))
			return
		}
		count = n
	}
	epochs, err := h.query.RecentEpochs(r.Context(), count)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, r, toEpochs(epochs))
}

func (h *RESTHandler) backfill(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.write(w, r, toProgress(h.query.Progress()))
}

func (h *RESTHandler) masternodes(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.write(w, r, h.query.Masternodes(r.Context()))
}

func parseWindow(r *http.Request, fallback time.Duration) (time.Duration, error) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return fallback, nil
	}
	window, err := time.ParseDuration(raw)
	if err != nil || window <= 0 || window > maxWindow {
		return 0, fmt.Errorf("%w: window must be a positive duration up to %s", errBadRequest, maxWindow)
	}
	return window, nil
}

func (h *RESTHandler) write(w http.ResponseWriter, r *http.Request, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (h *RESTHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"
	if errors.Is(err, errBadRequest) {
		code = http.StatusBadRequest
		msg = err.Error()
	} else {
		h.logger.Error("query failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorDTO{Error: msg})
}

// NewHTTPHandler wraps the gateway mux with read-only CORS.
func NewHTTPHandler(gw *gwruntime.ServeMux) http.Handler {
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}).Handler(gw)
}
