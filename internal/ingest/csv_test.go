package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage/memory"
)

func newImporterFixture(t *testing.T) (*CSVImporter, *memory.CandleStore, *memory.SentimentStore) {
	t.Helper()

	ctx := context.Background()
	assets := memory.NewAssetStore()
	timeframes := memory.NewTimeframeStore()
	candles := memory.NewCandleStore()
	sentiments := memory.NewSentimentStore()

	require.NoError(t, assets.Insert(ctx, &domain.Asset{Symbol: "BTC", Name: "Bitcoin"}))
	require.NoError(t, timeframes.Insert(ctx, &domain.Timeframe{Code: "1h", Description: "1 hour"}))

	return NewCSVImporter(assets, timeframes, candles, sentiments), candles, sentiments
}

func TestImport_ValidFile(t *testing.T) {
	importer, candles, _ := newImporterFixture(t)

	data := strings.Join([]string{
		"symbol,timestamp,open,high,low,close,volume",
		"BTC,2026-03-01T10:00:00Z,50000,50500,49500,50200,123.4",
		"btc,2026-03-01T11:00:00Z,50200,50800,50100,50700,98.7",
	}, "\n")

	n, err := importer.Import(context.Background(), strings.NewReader(data), "1h")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	count, err := candles.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	latest, err := candles.GetLatest(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 50700.0, latest.Close)
	require.Equal(t, "upload", latest.Exchange)
}

func TestImport_BadHeader(t *testing.T) {
	importer, _, _ := newImporterFixture(t)

	data := "ticker,time,o,h,l,c,v\nBTC,2026-03-01T10:00:00Z,1,2,3,4,5"
	_, err := importer.Import(context.Background(), strings.NewReader(data), "1h")
	require.Error(t, err)
}

func TestImport_UnknownSymbol(t *testing.T) {
	importer, candles, _ := newImporterFixture(t)

	data := strings.Join([]string{
		"symbol,timestamp,open,high,low,close,volume",
		"BTC,2026-03-01T10:00:00Z,50000,50500,49500,50200,123.4",
		"XRP,2026-03-01T11:00:00Z,1,2,0.5,1.5,100",
	}, "\n")

	_, err := importer.Import(context.Background(), strings.NewReader(data), "1h")
	require.Error(t, err)

	// Whole file rejected, nothing stored
	count, err := candles.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestImport_BadTimestamp(t *testing.T) {
	importer, _, _ := newImporterFixture(t)

	data := strings.Join([]string{
		"symbol,timestamp,open,high,low,close,volume",
		"BTC,03/01/2026,50000,50500,49500,50200,123.4",
	}, "\n")

	_, err := importer.Import(context.Background(), strings.NewReader(data), "1h")
	require.Error(t, err)
}

func TestImport_UnknownTimeframe(t *testing.T) {
	importer, _, _ := newImporterFixture(t)

	data := "symbol,timestamp,open,high,low,close,volume\n"
	_, err := importer.Import(context.Background(), strings.NewReader(data), "15m")
	require.Error(t, err)
}

func TestImportSentiments_ValidFile(t *testing.T) {
	importer, _, sentiments := newImporterFixture(t)

	data := strings.Join([]string{
		"symbol,timestamp,avg_sentiment,sent_count,pos_count,neg_count,neu_count,pos_ratio,neg_ratio,neu_ratio,has_news",
		"BTC,2026-03-01T10:00:00Z,0.35,10,6,2,2,0.6,0.2,0.2,1",
		"BTC,2026-03-01T11:00:00Z,-0.1,4,1,2,1,0.25,0.5,0.25,0",
	}, "\n")

	n, err := importer.ImportSentiments(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	recent, err := sentiments.GetRecent(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, -0.1, recent[0].AvgSentiment)
	require.Equal(t, 10, recent[1].SentCount)
	require.Equal(t, 1, recent[1].HasNews)
}

func TestImportSentiments_BadHeader(t *testing.T) {
	importer, _, _ := newImporterFixture(t)

	data := "symbol,timestamp,score\nBTC,2026-03-01T10:00:00Z,0.5"
	_, err := importer.ImportSentiments(context.Background(), strings.NewReader(data))
	require.Error(t, err)
}

func TestDecodeKline(t *testing.T) {
	item := []any{
		float64(1767261600000), "50000.1", "50500.2", "49500.3", "50200.4", "123.45",
		float64(1767265199999), "6169234.0", float64(1234), "60.0", "3000000.0", "0",
	}

	k, err := decodeKline(item)
	require.NoError(t, err)
	require.Equal(t, 50000.1, k.Open)
	require.Equal(t, 50500.2, k.High)
	require.Equal(t, 49500.3, k.Low)
	require.Equal(t, 50200.4, k.Close)
	require.Equal(t, 123.45, k.Volume)
	require.Equal(t, int64(1767261600000), k.OpenTime.UnixMilli())
}

func TestDecodeKline_TooShort(t *testing.T) {
	_, err := decodeKline([]any{float64(1), "2", "3"})
	require.Error(t, err)
}
