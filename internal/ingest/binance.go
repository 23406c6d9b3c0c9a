// Package ingest loads candle history into storage from exchange feeds and
// CSV uploads.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/observability"
	"crypto-predict/internal/storage"
)

// DefaultKlineLimit is the number of bars requested per refresh.
const DefaultKlineLimit = 100

// Kline is one decoded exchange bar.
type Kline struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// BinanceFetcher pulls OHLCV history over the exchange REST API.
type BinanceFetcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	candles storage.CandleStore
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewBinanceFetcher creates a fetcher. Requests are rate-limited to stay
// inside the exchange request weight budget.
func NewBinanceFetcher(baseURL string, candles storage.CandleStore, logger zerolog.Logger) *BinanceFetcher {
	return &BinanceFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		candles: candles,
		logger:  logger.With().Str("component", "ingest").Str("source", "binance").Logger(),
	}
}

// WithMetrics attaches Prometheus instrumentation.
func (f *BinanceFetcher) WithMetrics(m *observability.Metrics) *BinanceFetcher {
	f.metrics = m
	return f
}

// WithHTTPClient sets a custom http.Client.
func (f *BinanceFetcher) WithHTTPClient(client *http.Client) *BinanceFetcher {
	f.client = client
	return f
}

// FetchKlines requests up to limit bars for a USDT pair.
func (f *BinanceFetcher) FetchKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v3/klines?symbol=%sUSDT&interval=%s&limit=%d",
		f.baseURL, strings.ToUpper(symbol), interval, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build klines request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read klines response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("klines request returned HTTP %d", resp.StatusCode)
	}

	// Wire format: array of arrays, numbers as strings except timestamps.
	var raw [][]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	klines := make([]Kline, 0, len(raw))
	for _, item := range raw {
		k, err := decodeKline(item)
		if err != nil {
			return nil, err
		}
		klines = append(klines, k)
	}
	return klines, nil
}

// Refresh fetches recent bars for the asset and stores the ones whose
// timestamp is not present yet. Best-effort dedup only: the schema carries no
// uniqueness constraint, so concurrent refreshes may still race in
// duplicates.
func (f *BinanceFetcher) Refresh(ctx context.Context, asset *domain.Asset, tf *domain.Timeframe) (int, error) {
	klines, err := f.FetchKlines(ctx, asset.Symbol, tf.Code, DefaultKlineLimit)
	if err != nil {
		f.observeError()
		return 0, err
	}

	var fresh []*domain.Candle
	for _, k := range klines {
		exists, err := f.candles.HasTimestamp(ctx, asset.AssetID, tf.TimeframeID, k.OpenTime)
		if err != nil {
			return 0, fmt.Errorf("check existing candle: %w", err)
		}
		if exists {
			continue
		}
		fresh = append(fresh, &domain.Candle{
			AssetID:     asset.AssetID,
			TimeframeID: tf.TimeframeID,
			Timestamp:   k.OpenTime,
			Open:        k.Open,
			High:        k.High,
			Low:         k.Low,
			Close:       k.Close,
			Volume:      k.Volume,
			Exchange:    "binance",
		})
	}

	n, err := f.candles.InsertBulk(ctx, fresh)
	if err != nil {
		f.observeError()
		return 0, fmt.Errorf("store candles: %w", err)
	}

	if f.metrics != nil {
		f.metrics.CandlesIngested.WithLabelValues("binance").Add(float64(n))
	}
	f.logger.Info().Str("symbol", asset.Symbol).Int("fetched", len(klines)).Int("stored", n).Msg("candles refreshed")
	return n, nil
}

func (f *BinanceFetcher) observeError() {
	if f.metrics != nil {
		f.metrics.IngestErrors.WithLabelValues("binance").Inc()
	}
}

func decodeKline(item []any) (Kline, error) {
	if len(item) < 6 {
		return Kline{}, fmt.Errorf("kline has %d fields, need 6", len(item))
	}

	openMs, ok := item[0].(float64)
	if !ok {
		return Kline{}, fmt.Errorf("kline open time is %T, not a number", item[0])
	}

	values := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := item[i].(string)
		if !ok {
			return Kline{}, fmt.Errorf("kline field %d is %T, not a string", i, item[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Kline{}, fmt.Errorf("parse kline field %d: %w", i, err)
		}
		values[i-1] = v
	}

	return Kline{
		OpenTime: time.UnixMilli(int64(openMs)).UTC(),
		Open:     values[0],
		High:     values[1],
		Low:      values[2],
		Close:    values[3],
		Volume:   values[4],
	}, nil
}
