// Package main runs the unified API server:
// - REST API: auth, prices, sentiment, predictions, admin reports
// - Ingestion (continuous): live kline websocket streams per asset
// - Scheduled jobs: candle refresh, model retrain bookkeeping
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"crypto-predict/internal/auth"
	"crypto-predict/internal/backtest"
	"crypto-predict/internal/config"
	"crypto-predict/internal/domain"
	"crypto-predict/internal/features"
	"crypto-predict/internal/httpapi"
	"crypto-predict/internal/inference"
	"crypto-predict/internal/inference/stub"
	"crypto-predict/internal/ingest"
	"crypto-predict/internal/observability"
	"crypto-predict/internal/prediction"
	"crypto-predict/internal/reporting"
	"crypto-predict/internal/scheduler"
	"crypto-predict/internal/storage"
	"crypto-predict/internal/storage/memory"
	pgstore "crypto-predict/internal/storage/postgres"
)

// seedAssets are created on startup when missing.
var seedAssets = []domain.Asset{
	{Symbol: "BTC", Name: "Bitcoin"},
	{Symbol: "ETH", Name: "Ethereum"},
	{Symbol: "BNB", Name: "Binance Coin"},
	{Symbol: "SOL", Name: "Solana"},
	{Symbol: "DOGE", Name: "Dogecoin"},
}

// allStores holds all storage implementations.
type allStores struct {
	assets      storage.AssetStore
	timeframes  storage.TimeframeStore
	users       storage.UserStore
	candles     storage.CandleStore
	sentiments  storage.SentimentStore
	features    storage.FeatureStore
	predictions storage.PredictionStore
	modelLogs   storage.ModelLogStore
	reports     storage.ReportStore
}

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "Apply database migrations and exit")
	noStream := flag.Bool("no-stream", false, "Disable live websocket candle streams")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Debug)

	if !cfg.UseMemory {
		if err := pgstore.Migrate(cfg.PostgresDSN); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
		logger.Info().Msg("migrations applied")
	}
	if *migrateOnly {
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, pinger, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("create stores")
	}
	defer cleanup()

	if err := seed(ctx, stores); err != nil {
		logger.Fatal().Err(err).Msg("seed reference data")
	}

	m := observability.NewMetrics("")

	var engine inference.Engine
	if cfg.ModelEndpoint != "" {
		engine = inference.NewHTTPEngine(cfg.ModelEndpoint)
		logger.Info().Str("endpoint", cfg.ModelEndpoint).Msg("using external model")
	} else {
		engine = stub.NewEngine()
		logger.Warn().Msg("MODEL_ENDPOINT not set, using stub model")
	}

	predictor := prediction.NewService(
		features.NewExtractor(stores.features),
		engine,
		stores.predictions,
		logger,
	).WithMetrics(m)

	authSvc := auth.NewService(stores.users, cfg.JWTSecret, cfg.TokenTTL, logger).WithMetrics(m)
	reporter := backtest.NewReporter(stores.reports)
	fetcher := ingest.NewBinanceFetcher(cfg.BinanceBaseURL, stores.candles, logger).WithMetrics(m)
	importer := ingest.NewCSVImporter(stores.assets, stores.timeframes, stores.candles, stores.sentiments).WithMetrics(m)

	sched := scheduler.New(stores.assets, stores.timeframes, stores.candles, stores.modelLogs, fetcher, logger)
	if err := sched.RegisterCandleRefresh(cfg.CandleRefreshSpec); err != nil {
		logger.Fatal().Err(err).Msg("register candle refresh")
	}
	if err := sched.RegisterRetrain(cfg.RetrainSpec); err != nil {
		logger.Fatal().Err(err).Msg("register retrain")
	}
	sched.Start()
	defer sched.Stop()

	if !*noStream {
		startStreams(ctx, cfg, stores, m, logger)
	}

	server := httpapi.NewServer(httpapi.Deps{
		Assets:     stores.assets,
		Timeframes: stores.timeframes,
		Candles:    stores.candles,
		Sentiments: stores.sentiments,
		Auth:       authSvc,
		Predictor:  predictor,
		Reporter:   reporter,
		Reports:    reporting.NewGenerator(reporter, stores.reports),
		Importer:   importer,
		Pinger:     pinger,
		Metrics:    m,
		Logger:     logger,
	})

	apiSrv := &http.Server{Addr: cfg.ServerAddr, Handler: server.Router()}
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux()}

	errCh := make(chan error, 2)
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("api listening")
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api shutdown")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics shutdown")
	}
	logger.Info().Msg("shutdown complete")
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

// createStores builds either the in-memory or Postgres store set.
func createStores(ctx context.Context, cfg *config.Config) (*allStores, httpapi.Pinger, func(), error) {
	if cfg.UseMemory {
		assets := memory.NewAssetStore()
		users := memory.NewUserStore()
		candles := memory.NewCandleStore()
		sentiments := memory.NewSentimentStore()
		predictions := memory.NewPredictionStore()
		stores := &allStores{
			assets:      assets,
			timeframes:  memory.NewTimeframeStore(),
			users:       users,
			candles:     candles,
			sentiments:  sentiments,
			features:    memory.NewFeatureStore(candles, sentiments),
			predictions: predictions,
			modelLogs:   memory.NewModelLogStore(),
			reports:     memory.NewReportStore(assets, users, candles, predictions),
		}
		return stores, nil, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	stores := &allStores{
		assets:      pgstore.NewAssetStore(pool),
		timeframes:  pgstore.NewTimeframeStore(pool),
		users:       pgstore.NewUserStore(pool),
		candles:     pgstore.NewCandleStore(pool),
		sentiments:  pgstore.NewSentimentStore(pool),
		features:    pgstore.NewFeatureStore(pool),
		predictions: pgstore.NewPredictionStore(pool),
		modelLogs:   pgstore.NewModelLogStore(pool),
		reports:     pgstore.NewReportStore(pool),
	}
	pinger := httpapi.PingerFunc(func(ctx context.Context) error { return pool.Ping(ctx) })
	return stores, pinger, pool.Close, nil
}

// seed inserts the reference assets and the default timeframe, tolerating
// rows that already exist.
func seed(ctx context.Context, stores *allStores) error {
	tf := &domain.Timeframe{Code: domain.DefaultTimeframeCode, Description: "1 hour"}
	if err := stores.timeframes.Insert(ctx, tf); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("seed timeframe: %w", err)
	}

	for _, asset := range seedAssets {
		a := asset
		if err := stores.assets.Insert(ctx, &a); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("seed asset %s: %w", a.Symbol, err)
		}
	}
	return nil
}

// startStreams launches one live kline consumer per seeded asset.
func startStreams(ctx context.Context, cfg *config.Config, stores *allStores, m *observability.Metrics, logger zerolog.Logger) {
	tf, err := stores.timeframes.GetByCode(ctx, domain.DefaultTimeframeCode)
	if err != nil {
		logger.Error().Err(err).Msg("resolve default timeframe, streams disabled")
		return
	}
	assets, err := stores.assets.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("list assets, streams disabled")
		return
	}

	for _, asset := range assets {
		streamer := ingest.NewKlineStreamer(cfg.BinanceWSURL, asset, tf, stores.candles, logger).WithMetrics(m)
		go func() {
			if err := streamer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("stream terminated")
			}
		}()
	}
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	return mux
}
