package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/observability"
	"crypto-predict/internal/storage"
)

// csvHeader is the required first line of a candle upload.
var csvHeader = []string{"symbol", "timestamp", "open", "high", "low", "close", "volume"}

// sentimentCSVHeader is the required first line of a sentiment upload.
var sentimentCSVHeader = []string{
	"symbol", "timestamp", "avg_sentiment", "sent_count",
	"pos_count", "neg_count", "neu_count",
	"pos_ratio", "neg_ratio", "neu_ratio", "has_news",
}

// CSVImporter parses uploaded candle and sentiment files and stores the rows.
type CSVImporter struct {
	assets     storage.AssetStore
	timeframes storage.TimeframeStore
	candles    storage.CandleStore
	sentiments storage.SentimentStore
	metrics    *observability.Metrics
}

// NewCSVImporter creates an importer.
func NewCSVImporter(assets storage.AssetStore, timeframes storage.TimeframeStore, candles storage.CandleStore, sentiments storage.SentimentStore) *CSVImporter {
	return &CSVImporter{assets: assets, timeframes: timeframes, candles: candles, sentiments: sentiments}
}

// WithMetrics attaches Prometheus instrumentation.
func (im *CSVImporter) WithMetrics(m *observability.Metrics) *CSVImporter {
	im.metrics = m
	return im
}

// Import reads candle rows from r and stores them under the given timeframe
// code. Every row's symbol must resolve to a known asset; the whole file is
// rejected on the first bad row so a partial upload never lands.
func (im *CSVImporter) Import(ctx context.Context, r io.Reader, timeframeCode string) (int, error) {
	tf, err := im.timeframes.GetByCode(ctx, timeframeCode)
	if err != nil {
		return 0, fmt.Errorf("resolve timeframe %q: %w", timeframeCode, err)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return 0, err
	}

	assetsBySymbol := make(map[string]*domain.Asset)
	var candles []*domain.Candle
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv line %d: %w", line, err)
		}

		symbol := strings.ToUpper(strings.TrimSpace(record[0]))
		asset, ok := assetsBySymbol[symbol]
		if !ok {
			asset, err = im.assets.GetBySymbol(ctx, symbol)
			if err != nil {
				return 0, fmt.Errorf("line %d: unknown symbol %q: %w", line, symbol, err)
			}
			assetsBySymbol[symbol] = asset
		}

		candle, err := parseCSVRow(record, line)
		if err != nil {
			return 0, err
		}
		candle.AssetID = asset.AssetID
		candle.TimeframeID = tf.TimeframeID
		candles = append(candles, candle)
	}

	n, err := im.candles.InsertBulk(ctx, candles)
	if err != nil {
		return 0, fmt.Errorf("store csv candles: %w", err)
	}
	if im.metrics != nil {
		im.metrics.CandlesIngested.WithLabelValues("csv").Add(float64(n))
	}
	return n, nil
}

// ImportSentiments reads sentiment rows from r and stores them. Sentiment
// arrives out of band from an external scoring job; this path is the only
// write surface for it. The whole file is rejected on the first bad row.
func (im *CSVImporter) ImportSentiments(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	if err := checkHeaderAgainst(header, sentimentCSVHeader); err != nil {
		return 0, err
	}

	assetsBySymbol := make(map[string]*domain.Asset)
	var records []*domain.Sentiment
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv line %d: %w", line, err)
		}

		symbol := strings.ToUpper(strings.TrimSpace(record[0]))
		asset, ok := assetsBySymbol[symbol]
		if !ok {
			asset, err = im.assets.GetBySymbol(ctx, symbol)
			if err != nil {
				return 0, fmt.Errorf("line %d: unknown symbol %q: %w", line, symbol, err)
			}
			assetsBySymbol[symbol] = asset
		}

		sentiment, err := parseSentimentCSVRow(record, line)
		if err != nil {
			return 0, err
		}
		sentiment.AssetID = asset.AssetID
		records = append(records, sentiment)
	}

	n, err := im.sentiments.InsertBulk(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("store csv sentiments: %w", err)
	}
	if im.metrics != nil {
		im.metrics.SentimentsIngested.Add(float64(n))
	}
	return n, nil
}

func checkHeader(header []string) error {
	return checkHeaderAgainst(header, csvHeader)
}

func checkHeaderAgainst(header, want []string) error {
	if len(header) != len(want) {
		return fmt.Errorf("csv header has %d columns, need %d", len(header), len(want))
	}
	for i, col := range want {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return fmt.Errorf("csv column %d is %q, want %q", i+1, header[i], col)
		}
	}
	return nil
}

func parseSentimentCSVRow(record []string, line int) (*domain.Sentiment, error) {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[1]))
	if err != nil {
		return nil, fmt.Errorf("line %d: parse timestamp: %w", line, err)
	}

	floats := make([]float64, len(sentimentCSVHeader)-2)
	for i := 2; i < len(sentimentCSVHeader); i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse %s: %w", line, sentimentCSVHeader[i], err)
		}
		floats[i-2] = v
	}

	return &domain.Sentiment{
		Timestamp:    ts.UTC(),
		AvgSentiment: floats[0],
		SentCount:    int(floats[1]),
		PosCount:     int(floats[2]),
		NegCount:     int(floats[3]),
		NeuCount:     int(floats[4]),
		PosRatio:     floats[5],
		NegRatio:     floats[6],
		NeuRatio:     floats[7],
		HasNews:      int(floats[8]),
	}, nil
}

func parseCSVRow(record []string, line int) (*domain.Candle, error) {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[1]))
	if err != nil {
		return nil, fmt.Errorf("line %d: parse timestamp: %w", line, err)
	}

	values := make([]float64, 5)
	for i := 2; i < 7; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse %s: %w", line, csvHeader[i], err)
		}
		values[i-2] = v
	}

	return &domain.Candle{
		Timestamp: ts.UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
		Exchange:  "upload",
	}, nil
}
