package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/dashpulse-backend/internal/metrics"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/chain"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/dash"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/repository/clickhouse"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/repository/memory"
	"github.com/goodnatureofminers/dashpulse-backend/internal/telemetry/service/syncer"
	"github.com/goodnatureofminers/dashpulse-backend/internal/transport"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type config struct {
	Store         string `long:"store" env:"DASH_TELEMETRY_STORE" description:"cache store" choice:"clickhouse" choice:"memory" default:"clickhouse"`
	ClickhouseDSN string `long:"clickhouse-dsn" env:"DASH_TELEMETRY_CLICKHOUSE_DSN" description:"ClickHouse DSN"`
	Network       string `long:"network" env:"DASH_TELEMETRY_NETWORK" description:"network label for metrics" default:"mainnet"`

	RPCURL       string        `long:"rpc-url" env:"DASH_TELEMETRY_RPC_URL" description:"Dash Core RPC URL; empty disables the node source"`
	RPCUser      string        `long:"rpc-user" env:"DASH_TELEMETRY_RPC_USER" description:"Dash Core RPC username"`
	RPCPassword  string        `long:"rpc-password" env:"DASH_TELEMETRY_RPC_PASSWORD" description:"Dash Core RPC password"`
	ZMQAddr      string        `long:"zmq-addr" env:"DASH_TELEMETRY_ZMQ_ADDR" description:"Dash Core zmqpubhashblock endpoint; needs the zmq build tag"`
	RPCTimeout   time.Duration `long:"rpc-timeout" env:"DASH_TELEMETRY_RPC_TIMEOUT" description:"timeout of a single RPC call" default:"15s"`
	ProbeTimeout time.Duration `long:"probe-timeout" env:"DASH_TELEMETRY_PROBE_TIMEOUT" description:"node availability probe timeout" default:"8s"`
	ProbeTTL     time.Duration `long:"probe-ttl" env:"DASH_TELEMETRY_PROBE_TTL" description:"how long an availability verdict is reused" default:"5m"`

	InsightURL      string        `long:"insight-url" env:"DASH_TELEMETRY_INSIGHT_URL" description:"Insight API base URL" default:"https://insight.dash.org/insight-api"`
	BlockchairURL   string        `long:"blockchair-url" env:"DASH_TELEMETRY_BLOCKCHAIR_URL" description:"Blockchair API base URL" default:"https://api.blockchair.com"`
	PlatformURL     string        `long:"platform-url" env:"DASH_TELEMETRY_PLATFORM_URL" description:"Platform explorer API base URL" default:"https://platform-explorer.pshenmic.dev"`
	MasternodeURL   string        `long:"masternode-url" env:"DASH_TELEMETRY_MASTERNODE_URL" description:"masternode count API base URL; empty disables it"`
	MasternodePath  string        `long:"masternode-path" env:"DASH_TELEMETRY_MASTERNODE_PATH" description:"masternode count API path" default:"/masternodes/count"`
	UserAgent       string        `long:"user-agent" env:"DASH_TELEMETRY_USER_AGENT" description:"user agent for public APIs" default:"dashpulse-telemetry/1.0"`
	HTTPTimeout     time.Duration `long:"http-timeout" env:"DASH_TELEMETRY_HTTP_TIMEOUT" description:"timeout of a public API request" default:"30s"`
	PublicRPS       int           `long:"public-rps" env:"DASH_TELEMETRY_PUBLIC_RPS" description:"request rate limit per public API, 0 disables" default:"5"`
	Cutoff          string        `long:"cutoff" env:"DASH_TELEMETRY_CUTOFF" description:"oldest block and epoch time kept (RFC3339)" default:"2024-01-01T00:00:00Z"`
	FloorHeight     uint64        `long:"floor-height" env:"DASH_TELEMETRY_FLOOR_HEIGHT" description:"backfill target when the cache is empty" default:"1990000"`
	ForwardInterval time.Duration `long:"forward-interval" env:"DASH_TELEMETRY_FORWARD_INTERVAL" description:"forward sync interval" default:"5m"`
	EpochInterval   time.Duration `long:"epoch-interval" env:"DASH_TELEMETRY_EPOCH_INTERVAL" description:"epoch sync interval" default:"15m"`
	BackfillRetry   time.Duration `long:"backfill-retry" env:"DASH_TELEMETRY_BACKFILL_RETRY" description:"delay before restarting a failed backfill" default:"30s"`
	RestAddr        string        `long:"rest-addr" env:"DASH_TELEMETRY_REST_ADDR" description:"REST API listen address" default:":8001"`
	GRPCAddr        string        `long:"grpc-addr" env:"DASH_TELEMETRY_GRPC_ADDR" description:"gRPC health listen address" default:":8000"`
	MetricsAddr     string        `long:"metrics-addr" env:"DASH_TELEMETRY_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	LogJSON         bool          `long:"log-json" env:"DASH_TELEMETRY_LOG_JSON" description:"production JSON logging"`
}

type store interface {
	syncer.Repository
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	grpcZap.ReplaceGrpcLoggerV2(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("dash telemetry failed", zap.Error(err))
	}
}

func newLogger(jsonOutput bool) (*zap.Logger, error) {
	if jsonOutput {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	cutoff, err := time.Parse(time.RFC3339, cfg.Cutoff)
	if err != nil {
		return fmt.Errorf("parse cutoff: %w", err)
	}

	repo, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	params := chain.MainnetParams()
	httpMetrics := metrics.NewHTTPSource()
	httpOpts := dash.HTTPOptions{Timeout: cfg.HTTPTimeout, UserAgent: cfg.UserAgent, RPS: cfg.PublicRPS}
	insight := dash.NewInsight(dash.NewHTTPClient("insight", cfg.InsightURL, httpOpts, httpMetrics), params)
	blockchair := dash.NewBlockchair(dash.NewHTTPClient("blockchair", cfg.BlockchairURL, httpOpts, httpMetrics))
	platform := dash.NewPlatform(dash.NewHTTPClient("platform", cfg.PlatformURL, httpOpts, httpMetrics))

	var masternodeAPI syncer.MasternodeSource
	if cfg.MasternodeURL != "" {
		masternodeAPI = dash.NewMasternodeAPI(dash.NewHTTPClient("masternode_api", cfg.MasternodeURL, httpOpts, httpMetrics), cfg.MasternodePath)
	}

	rawRPC, err := dash.DialRPC(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return fmt.Errorf("init dash rpc client: %w", err)
	}
	if rawRPC != nil {
		defer func() {
			rawRPC.Shutdown()
			rawRPC.WaitForShutdown()
		}()
	}

	// nil interfaces below mean the node source is not configured
	var (
		prober       dash.Prober
		blockSource  dash.BlockSource
		heightSource dash.HeightSource
		nodeCounts   syncer.MasternodeSource
	)
	if rawRPC != nil {
		rpc := dash.NewRPCClient(rawRPC, metrics.NewRPCClient(cfg.Network), cfg.RPCTimeout)
		src := dash.NewRPCSource(rpc, params)
		prober, blockSource, heightSource, nodeCounts = rpc, src, src, src
	} else {
		logger.Warn("dash core rpc not configured, using public sources only")
	}

	selector := dash.NewSelector(prober, metrics.NewSelector(), logger, dash.SelectorOptions{
		ProbeTimeout: cfg.ProbeTimeout,
		TTL:          cfg.ProbeTTL,
	})
	fetcher := dash.NewBlockFetcher(logger, selector, blockSource, insight)
	tip := dash.NewTipSource(logger, selector, heightSource, insight, blockchair)

	forward, err := syncer.NewForwardSync(repo, fetcher, tip, metrics.NewForwardSync(), logger)
	if err != nil {
		return err
	}
	backfill, err := syncer.NewBackfill(repo, fetcher, tip, metrics.NewBackfill(), syncer.BackfillConfig{
		Cutoff:      cutoff,
		FloorHeight: cfg.FloorHeight,
	}, logger)
	if err != nil {
		return err
	}
	epochs, err := syncer.NewEpochSync(repo, platform, metrics.NewEpochSync(), cutoff, logger)
	if err != nil {
		return err
	}
	masternodes := syncer.NewMasternodes(repo, selector, nodeCounts, masternodeAPI, logger)
	query := syncer.NewQuery(repo, backfill, masternodes, epochs)
	blockSignal, err := startBlockSignal(ctx, cfg.ZMQAddr, logger)
	if err != nil {
		return err
	}
	scheduler := syncer.NewScheduler(forward, epochs, backfill, syncer.SchedulerConfig{
		ForwardInterval: cfg.ForwardInterval,
		EpochInterval:   cfg.EpochInterval,
		BackfillRetry:   cfg.BackfillRetry,
		BlockSignal:     blockSignal,
	}, logger)

	reporter := transport.NewHealthReporter(query, logger)
	grpcServer := transport.NewGRPCServer(logger, reporter)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(ctx)
	})
	g.Go(func() error {
		reporter.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return serveGRPC(ctx, cfg.GRPCAddr, grpcServer, logger)
	})
	g.Go(func() error {
		return serveREST(ctx, cfg, query, logger)
	})
	g.Go(func() error {
		return serveHTTP(ctx, "metrics", cfg.MetricsAddr, promhttp.Handler(), logger)
	})

	return g.Wait()
}

func newStore(ctx context.Context, cfg config, logger *zap.Logger) (store, error) {
	if cfg.Store == "memory" {
		logger.Warn("using in-memory store, the cache is lost on restart")
		return memory.NewRepository(), nil
	}
	if cfg.ClickhouseDSN == "" {
		return nil, errors.New("ClickHouse DSN is required")
	}
	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return repo, nil
}

func serveGRPC(ctx context.Context, addr string, server *grpc.Server, logger *zap.Logger) error {
	socket, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down gRPC server")
		server.GracefulStop()
	}()
	logger.Info("starting gRPC server", zap.String("addr", addr))
	if err := server.Serve(socket); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve grpc: %w", err)
	}
	return nil
}

func serveREST(ctx context.Context, cfg config, query transport.Query, logger *zap.Logger) error {
	conn, err := grpc.NewClient(localAddr(cfg.GRPCAddr), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial grpc health: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	gw := gwruntime.NewServeMux(gwruntime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))
	if err := transport.NewRESTHandler(query, logger).Register(gw); err != nil {
		return err
	}
	return serveHTTP(ctx, "rest", cfg.RestAddr, transport.NewHTTPHandler(gw), logger)
}

func serveHTTP(ctx context.Context, name, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", zap.String("server", name), zap.Error(err))
		}
	}()

	logger.Info("starting http server", zap.String("server", name), zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

// localAddr turns a listen address such as ":8000" into a dialable target.
func localAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" || host == "0.0.0.0" || host == "::" {
		return net.JoinHostPort("127.0.0.1", port)
	}
	return addr
}
