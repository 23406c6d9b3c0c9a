package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/observability"
	"crypto-predict/internal/storage"
)

// klineEvent is the exchange websocket kline payload. Only the fields the
// streamer reads are declared.
type klineEvent struct {
	Event string `json:"e"`
	Kline struct {
		OpenTime int64  `json:"t"`
		Interval string `json:"i"`
		Open     string `json:"o"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Close    string `json:"c"`
		Volume   string `json:"v"`
		Closed   bool   `json:"x"`
	} `json:"k"`
}

// KlineStreamer consumes the live kline websocket feed for one asset and
// stores each closed bar. Open bars are ignored; a bar is only final once the
// exchange marks it closed.
type KlineStreamer struct {
	wsURL   string
	asset   *domain.Asset
	tf      *domain.Timeframe
	candles storage.CandleStore
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewKlineStreamer creates a streamer for one asset and timeframe.
func NewKlineStreamer(wsURL string, asset *domain.Asset, tf *domain.Timeframe, candles storage.CandleStore, logger zerolog.Logger) *KlineStreamer {
	return &KlineStreamer{
		wsURL:   strings.TrimRight(wsURL, "/"),
		asset:   asset,
		tf:      tf,
		candles: candles,
		logger: logger.With().
			Str("component", "ingest").
			Str("source", "stream").
			Str("symbol", asset.Symbol).
			Logger(),
	}
}

// WithMetrics attaches Prometheus instrumentation.
func (s *KlineStreamer) WithMetrics(m *observability.Metrics) *KlineStreamer {
	s.metrics = m
	return s
}

// Run consumes the stream until ctx is cancelled, reconnecting with
// exponential backoff after connection failures.
func (s *KlineStreamer) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // reconnect forever

	for {
		err := s.consume(ctx, bo)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.metrics != nil {
			s.metrics.IngestErrors.WithLabelValues("stream").Inc()
		}

		wait := bo.NextBackOff()
		s.logger.Warn().Err(err).Dur("retry_in", wait).Msg("stream disconnected")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (s *KlineStreamer) consume(ctx context.Context, bo *backoff.ExponentialBackOff) error {
	url := fmt.Sprintf("%s/%susdt@kline_%s", s.wsURL, strings.ToLower(s.asset.Symbol), s.tf.Code)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	bo.Reset()
	s.logger.Info().Str("url", url).Msg("stream connected")

	// Close the socket on cancellation so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read stream message: %w", err)
		}
		if err := s.handleMessage(ctx, message); err != nil {
			s.logger.Error().Err(err).Msg("store streamed candle")
			if s.metrics != nil {
				s.metrics.IngestErrors.WithLabelValues("stream").Inc()
			}
		}
	}
}

func (s *KlineStreamer) handleMessage(ctx context.Context, message []byte) error {
	var event klineEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return fmt.Errorf("decode stream event: %w", err)
	}
	if event.Event != "kline" || !event.Kline.Closed {
		return nil
	}

	candle, err := s.candleFromEvent(&event)
	if err != nil {
		return err
	}

	exists, err := s.candles.HasTimestamp(ctx, s.asset.AssetID, s.tf.TimeframeID, candle.Timestamp)
	if err != nil {
		return fmt.Errorf("check existing candle: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.candles.Insert(ctx, candle); err != nil {
		return fmt.Errorf("insert candle: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CandlesIngested.WithLabelValues("stream").Inc()
	}
	s.logger.Debug().Time("timestamp", candle.Timestamp).Float64("close", candle.Close).Msg("candle streamed")
	return nil
}

func (s *KlineStreamer) candleFromEvent(event *klineEvent) (*domain.Candle, error) {
	fields := map[string]string{
		"open":   event.Kline.Open,
		"high":   event.Kline.High,
		"low":    event.Kline.Low,
		"close":  event.Kline.Close,
		"volume": event.Kline.Volume,
	}
	parsed := make(map[string]float64, len(fields))
	for name, value := range fields {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse kline %s: %w", name, err)
		}
		parsed[name] = v
	}

	return &domain.Candle{
		AssetID:     s.asset.AssetID,
		TimeframeID: s.tf.TimeframeID,
		Timestamp:   time.UnixMilli(event.Kline.OpenTime).UTC(),
		Open:        parsed["open"],
		High:        parsed["high"],
		Low:         parsed["low"],
		Close:       parsed["close"],
		Volume:      parsed["volume"],
		Exchange:    "binance",
	}, nil
}
