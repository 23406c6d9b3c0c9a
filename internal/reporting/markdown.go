package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Prediction Accuracy Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## System Overview\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Users | %d |\n", r.TotalUsers))
	sb.WriteString(fmt.Sprintf("| Total Candles | %d |\n", r.TotalCandles))
	sb.WriteString(fmt.Sprintf("| Total Predictions | %d |\n", r.TotalPredictions))
	sb.WriteString(fmt.Sprintf("| Scored Predictions | %d |\n", len(r.Rows)))
	sb.WriteString(fmt.Sprintf("| Mean Accuracy | %.2f%% |\n", r.MeanAccuracy()))
	sb.WriteString("\n")

	sb.WriteString("## Scored Predictions\n\n")
	if len(r.Rows) == 0 {
		sb.WriteString("No predictions have realized candles yet.\n")
		return sb.String()
	}

	sb.WriteString("| Symbol | Target Time | Predicted | Actual | Accuracy |\n")
	sb.WriteString("|--------|-------------|-----------|--------|----------|\n")
	for _, row := range r.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %.2f | %.2f%% |\n",
			row.Symbol,
			row.Timestamp.UTC().Format(time.RFC3339),
			row.PredictedPrice,
			row.ActualPrice,
			row.Accuracy,
		))
	}

	return sb.String()
}
