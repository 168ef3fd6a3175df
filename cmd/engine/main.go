package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tickforge/tickforge/internal/config"
	"github.com/tickforge/tickforge/internal/coordinator"
	"github.com/tickforge/tickforge/internal/database"
	"github.com/tickforge/tickforge/internal/engine"
	"github.com/tickforge/tickforge/internal/gateway"
	"github.com/tickforge/tickforge/internal/ingest"
	"github.com/tickforge/tickforge/internal/instrument"
	"github.com/tickforge/tickforge/internal/model"
	"github.com/tickforge/tickforge/internal/normalize"
	"github.com/tickforge/tickforge/internal/recorder"
	"github.com/tickforge/tickforge/internal/router"
	"github.com/tickforge/tickforge/internal/strategy"
	"github.com/tickforge/tickforge/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/engine.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting engine",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"venues", len(cfg.Venues),
		"shards", cfg.Router.Shards,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := recorder.EnsureSchema(ctx, db); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	// Build strategies
	strategies, err := strategy.Build(cfg.Engine.Strategies)
	if err != nil {
		logger.Error("failed to build strategies", "error", err)
		os.Exit(1)
	}
	logger.Info("strategies built",
		"count", len(strategies),
		"max_lookback", strategy.MaxLookback(strategies),
	)

	// Instrument registry, pre-seeded with the watchlist per venue
	registry := instrument.NewRegistry()
	codecs := make([]normalize.Codec, 0, len(cfg.Venues))
	for _, v := range cfg.Venues {
		codec := normalize.NewKalshiCodec(v.Name)
		codecs = append(codecs, codec)
		registry.Seed(v.Name, cfg.Router.Watchlist, codec.AssetClass())
	}

	// Pipeline channels
	rawCh := make(chan ingest.RawMessage, cfg.Ingest.BufferSize)
	tickCh := make(chan model.Tick, cfg.Router.WarmBufferSize)
	decCh := make(chan model.StrategyDecision, cfg.Coordinator.BufferSize)
	intentCh := make(chan model.OrderIntent, cfg.Gateway.BufferSize)

	recTicks := make(chan model.Tick, cfg.Recorder.BufferSize)
	recInsts := make(chan model.Instrument, cfg.Recorder.BufferSize)
	recDecs := make(chan model.StrategyDecision, cfg.Recorder.BufferSize)
	recIntents := make(chan model.OrderIntent, cfg.Recorder.BufferSize)
	recExecs := make(chan model.OrderExecution, cfg.Recorder.BufferSize)

	// Recorder starts first and stops last: lineage written by any
	// stage must land.
	rec := recorder.NewRecorder(
		recorder.Config{BatchSize: cfg.Recorder.BatchSize, FlushInterval: cfg.Recorder.FlushInterval},
		recorder.Inputs{
			Instruments: recInsts,
			Ticks:       recTicks,
			Decisions:   recDecs,
			Intents:     recIntents,
			Executions:  recExecs,
		},
		db, logger,
	)

	var venue gateway.Venue
	switch cfg.Gateway.Mode {
	case "simulation":
		venue = gateway.NewSimVenue(cfg.Gateway.MaxOrderSize)
	default:
		logger.Error("no venue adapter for gateway mode", "mode", cfg.Gateway.Mode)
		os.Exit(1)
	}
	gw := gateway.NewGateway(venue, intentCh, recExecs, logger)

	coord := coordinator.NewCoordinator(
		coordinator.Config{Window: cfg.Coordinator.Window},
		decCh, intentCh, recIntents, logger,
	)

	assignment := router.NewAssignment(cfg.Router.Shards)
	rt := router.NewRouter(
		router.Config{
			Shards:         cfg.Router.Shards,
			FastRingSize:   cfg.Router.FastRingSize,
			WarmBufferSize: cfg.Router.WarmBufferSize,
			ColdBufferSize: cfg.Router.ColdBufferSize,
			Rules:          router.NewRules(cfg.Router.Watchlist, cfg.Router.StaleAfter),
		},
		assignment, tickCh, logger,
	)

	shards := make([]*engine.Shard, assignment.Shards())
	for i := range shards {
		shards[i] = engine.NewShard(i, strategies, rt.Queues(i), decCh, recDecs, logger)
	}

	norm := normalize.NewNormalizer(codecs, registry, rawCh, tickCh, recTicks, recInsts, logger)

	// Start downstream to upstream so nothing consumes into a void.
	if err := rec.Start(ctx); err != nil {
		logger.Error("failed to start recorder", "error", err)
		os.Exit(1)
	}
	if err := gw.Start(ctx); err != nil {
		logger.Error("failed to start gateway", "error", err)
		os.Exit(1)
	}
	if err := coord.Start(ctx); err != nil {
		logger.Error("failed to start coordinator", "error", err)
		os.Exit(1)
	}
	for _, sh := range shards {
		if err := sh.Start(ctx); err != nil {
			logger.Error("failed to start engine shard", "error", err)
			os.Exit(1)
		}
	}
	if err := rt.Start(ctx); err != nil {
		logger.Error("failed to start router", "error", err)
		os.Exit(1)
	}
	if err := norm.Start(ctx); err != nil {
		logger.Error("failed to start normalizer", "error", err)
		os.Exit(1)
	}

	// Venue connections, one supervisor per configured connection
	backoff := ingest.Backoff{
		Base:   cfg.Ingest.ReconnectBaseDelay,
		Max:    cfg.Ingest.ReconnectMaxDelay,
		Jitter: cfg.Ingest.ReconnectJitter,
	}

	var supervisors []*ingest.Supervisor
	g, gctx := errgroup.WithContext(ctx)
	for _, v := range cfg.Venues {
		clientCfg := ingest.ClientConfig{
			URL:              v.URL,
			APIKey:           v.APIKey,
			BufferSize:       cfg.Ingest.BufferSize,
			HandshakeTimeout: cfg.Ingest.HandshakeTimeout,
			PingInterval:     cfg.Ingest.PingInterval,
			ReadTimeout:      cfg.Ingest.ReadTimeout,
		}
		for i := 0; i < v.Connections; i++ {
			sup := ingest.NewSupervisor(
				v.Name,
				strconv.Itoa(i),
				v.Channels,
				func() ingest.Client { return ingest.NewClient(clientCfg, logger) },
				backoff,
				rawCh,
				logger,
			)
			supervisors = append(supervisors, sup)
			g.Go(func() error { return sup.Run(gctx) })
		}
	}

	// Health and metrics server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(cfg, db, supervisors, norm, rt, shards, coord, gw, rec),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("engine running",
		"instance_id", cfg.Instance.ID,
		"connections", len(supervisors),
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down...")

	if err := g.Wait(); err != nil {
		logger.Warn("supervisor error on shutdown", "error", err)
	}

	// Stop in pipeline order so in-flight work drains forward; the
	// recorder goes last and takes the final flush.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	norm.Stop(shutdownCtx)
	rt.Stop(shutdownCtx)
	for _, sh := range shards {
		sh.Stop(shutdownCtx)
	}
	coord.Stop(shutdownCtx)
	gw.Stop(shutdownCtx)
	rec.Stop(shutdownCtx)

	healthServer.Shutdown(shutdownCtx)

	logger.Info("engine stopped")
}

// createHealthHandler exposes component stats and Prometheus metrics.
func createHealthHandler(
	cfg *config.Config,
	db *pgxpool.Pool,
	supervisors []*ingest.Supervisor,
	norm *normalize.Normalizer,
	rt *router.Router,
	shards []*engine.Shard,
	coord *coordinator.Coordinator,
	gw *gateway.Gateway,
	rec *recorder.Recorder,
) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(cfg.Health.MetricsPath, promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check database
		if err := db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["database"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["database"] = "connected"
		}

		// Venue connections
		connected := 0
		conns := make(map[string]string, len(supervisors))
		for _, sup := range supervisors {
			state := sup.State()
			if state == ingest.StateConnected {
				connected++
			}
			conns[sup.Venue()+"-"+sup.ID()] = state.String()
		}
		health.Components["connections"] = conns
		if connected == 0 && len(supervisors) > 0 {
			health.Status = "degraded"
		}

		engineStats := make([]engine.Stats, len(shards))
		for i, sh := range shards {
			engineStats[i] = sh.Stats()
		}

		health.Components["normalizer"] = norm.Stats()
		health.Components["router"] = rt.Stats()
		health.Components["engine"] = engineStats
		health.Components["coordinator"] = coord.Stats()
		health.Components["gateway"] = gw.Stats()
		health.Components["recorder"] = rec.Stats()

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
