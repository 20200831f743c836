package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/binance-collector/internal/api"
	"github.com/rickgao/binance-collector/internal/config"
	"github.com/rickgao/binance-collector/internal/logging"
	"github.com/rickgao/binance-collector/internal/market"
	"github.com/rickgao/binance-collector/internal/metrics"
	"github.com/rickgao/binance-collector/internal/poller"
	"github.com/rickgao/binance-collector/internal/version"
	"github.com/rickgao/binance-collector/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/collector.local.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single cycle immediately and exit")
	flag.Parse()

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "config", *configPath)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("starting collector", append(version.LogAttrs(),
		"instance_id", cfg.Instance.ID,
		"symbols", cfg.Symbols,
		"driver", cfg.Store.Driver,
	)...)

	if err := run(cfg, logger, *once); err != nil {
		logger.Error("collector failed", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, once bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	apiClient := api.NewClient(
		cfg.API.SpotURL,
		cfg.API.FuturesURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		api.WithCandleInterval(cfg.API.CandleInterval),
		api.WithDepthLimit(cfg.API.DepthLimit),
		api.WithRatioPeriod(cfg.API.RatioPeriod),
	)

	prom := metrics.NewPrometheus(cfg.Metrics.Namespace)
	recorders := metrics.Multi{prom}

	if cfg.Metrics.CloudWatch.Enabled {
		cw, err := metrics.NewCloudWatch(ctx, cfg.Metrics.CloudWatch.Region, cfg.Metrics.CloudWatch.Namespace, cfg.Instance.ID, logger)
		if err != nil {
			return fmt.Errorf("cloudwatch: %w", err)
		}
		recorders = append(recorders, cw)
		logger.Info("cloudwatch publishing enabled", "region", cfg.Metrics.CloudWatch.Region)
	}

	var weightLimit int64
	infoCtx, infoCancel := context.WithTimeout(ctx, 10*time.Second)
	info, err := apiClient.FuturesExchangeInfo(infoCtx)
	infoCancel()
	if err != nil {
		logger.Warn("could not read futures request weight limit", "error", err)
	} else {
		weightLimit = info.WeightLimit
		prom.SetWeightLimit(weightLimit)
		logger.Info("futures request weight limit", "limit", weightLimit)
	}

	registry := market.NewRegistry(market.DefaultConfig(), apiClient, cfg.Symbols, logger)
	if err := registry.Start(ctx); err != nil {
		return fmt.Errorf("start symbol registry: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		registry.Stop(stopCtx)
	}()

	pollerCfg := poller.DefaultConfig()
	pollerCfg.Symbols = cfg.Symbols
	pollerCfg.WakeSecond = cfg.Schedule.Second()
	pollerCfg.Concurrency = cfg.Poller.Concurrency
	pollerCfg.WeightLimit = weightLimit
	if cfg.Poller.WeightWarnRatio > 0 {
		pollerCfg.WeightWarn = cfg.Poller.WeightWarnRatio
	}

	p := poller.New(pollerCfg, apiClient, writer.New(store, logger), logger,
		poller.WithRecorder(recorders),
		poller.WithWeights(apiClient.Weights()),
	)

	if once {
		_, err := p.RunCycle(ctx)
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newHandler(store, p, registry, prom.Handler(), cfg.Metrics.Path),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting http server", "port", cfg.Metrics.Port, "metrics_path", cfg.Metrics.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	logger.Info("collector running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	<-ctx.Done()
	logger.Info("shutting down...")

	// An in-flight cycle is allowed to finish its writes.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	if err := p.Stop(shutdownCtx); err != nil {
		logger.Warn("poller did not stop cleanly", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}

	logger.Info("collector stopped")
	return nil
}
