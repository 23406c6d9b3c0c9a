package reporting

import (
	"fmt"
	"strings"
	"time"

	"crypto-predict/internal/backtest"
)

// RenderCSV renders accuracy rows as CSV string.
func RenderCSV(rows []backtest.AccuracyRow) string {
	var sb strings.Builder

	sb.WriteString("symbol,timestamp,predicted_price,actual_price,accuracy\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%.2f,%.2f,%.2f\n",
			r.Symbol,
			r.Timestamp.UTC().Format(time.RFC3339),
			r.PredictedPrice,
			r.ActualPrice,
			r.Accuracy,
		))
	}

	return sb.String()
}
