package domain

import "time"

// WindowSize is the required number of joined candle+sentiment rows per
// feature window. Fewer rows is a hard precondition failure, not a warning.
const WindowSize = 48

// FeatureColumns lists the model input columns in wire order.
var FeatureColumns = []string{
	"open", "high", "low", "close", "volume",
	"avg_sentiment", "sent_count", "pos_count", "neg_count", "neu_count",
	"pos_ratio", "neg_ratio", "neu_ratio", "has_news",
}

// FeatureRow is one joined candle+sentiment observation. Sentiment sub-fields
// that were NULL at rest are already defaulted to zero.
type FeatureRow struct {
	Timestamp    time.Time `json:"-"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       float64   `json:"volume"`
	AvgSentiment float64   `json:"avg_sentiment"`
	SentCount    int       `json:"sent_count"`
	PosCount     int       `json:"pos_count"`
	NegCount     int       `json:"neg_count"`
	NeuCount     int       `json:"neu_count"`
	PosRatio     float64   `json:"pos_ratio"`
	NegRatio     float64   `json:"neg_ratio"`
	NeuRatio     float64   `json:"neu_ratio"`
	HasNews      int       `json:"has_news"`
}

// FeatureWindow is an ordered sequence of exactly WindowSize rows, oldest
// first. Order matters: sequence-aware models depend on temporal ordering.
type FeatureWindow struct {
	AssetID int64
	Rows    []FeatureRow
}

// LatestClose returns the close of the newest row, the anchor price for
// projection. The window is chronological so this is the last element.
func (w *FeatureWindow) LatestClose() float64 {
	if len(w.Rows) == 0 {
		return 0
	}
	return w.Rows[len(w.Rows)-1].Close
}
