package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"crypto-predict/internal/reporting"
)

type sentimentResponse struct {
	Timestamp    time.Time `json:"timestamp"`
	AvgSentiment float64   `json:"avg_sentiment"`
	SentCount    int       `json:"sent_count"`
	PosRatio     float64   `json:"pos_ratio"`
	NegRatio     float64   `json:"neg_ratio"`
	NeuRatio     float64   `json:"neu_ratio"`
	HasNews      int       `json:"has_news"`
}

func (s *Server) handleSentiment(c *gin.Context) {
	asset, ok := s.resolveAsset(c)
	if !ok {
		return
	}

	records, err := s.sentiments.GetRecent(c.Request.Context(), asset.AssetID, sentimentPageSize)
	if err != nil {
		s.countStoreError("sentiments")
		s.logger.Error().Err(err).Str("symbol", asset.Symbol).Msg("load sentiments")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	out := make([]sentimentResponse, 0, len(records))
	for _, r := range records {
		out = append(out, sentimentResponse{
			Timestamp:    r.Timestamp,
			AvgSentiment: r.AvgSentiment,
			SentCount:    r.SentCount,
			PosRatio:     r.PosRatio,
			NegRatio:     r.NegRatio,
			NeuRatio:     r.NeuRatio,
			HasNews:      r.HasNews,
		})
	}
	c.JSON(http.StatusOK, gin.H{"symbol": asset.Symbol, "sentiment": out})
}

func (s *Server) handleUploadSentimentCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file field is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	inserted, err := s.importer.ImportSentiments(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

func (s *Server) handleStats(c *gin.Context) {
	report, err := s.reports.Generate(c.Request.Context())
	if err != nil {
		s.countStoreError("reports")
		s.logger.Error().Err(err).Msg("generate stats")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":        report.TotalUsers,
		"total_candles":      report.TotalCandles,
		"total_predictions":  report.TotalPredictions,
		"scored_predictions": len(report.Rows),
		"mean_accuracy":      report.MeanAccuracy(),
	})
}

func (s *Server) handleAccuracyReport(c *gin.Context) {
	rows, err := s.reporter.Report(c.Request.Context())
	if err != nil {
		s.countStoreError("reports")
		s.logger.Error().Err(err).Msg("generate accuracy report")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Disposition", `attachment; filename="accuracy_report.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte(reporting.RenderCSV(rows)))
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": rows, "count": len(rows)})
}
