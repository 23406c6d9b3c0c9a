package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/features"
	"crypto-predict/internal/inference"
	"crypto-predict/internal/storage"
)

const (
	defaultChartLimit = 150
	maxChartLimit     = 1000
)

type topAssetResponse struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

type chartResponse struct {
	Symbol string       `json:"symbol"`
	X      []time.Time  `json:"x"`
	Y      [][4]float64 `json:"y"` // open, high, low, close
}

type predictionPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	PredictedPrice float64   `json:"predicted_price"`
}

type predictResponse struct {
	Symbol      string            `json:"symbol"`
	Timeframe   string            `json:"timeframe"`
	ModelUsed   string            `json:"model_used"`
	Confidence  float64           `json:"confidence"`
	Predictions []predictionPoint `json:"predictions"`
}

// resolveAsset loads the asset for a path symbol, writing a 404 on miss.
func (s *Server) resolveAsset(c *gin.Context) (*domain.Asset, bool) {
	symbol := strings.ToUpper(c.Param("symbol"))
	asset, err := s.assets.GetBySymbol(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "asset not found: " + symbol})
			return nil, false
		}
		s.countStoreError("assets")
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("load asset")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return nil, false
	}
	return asset, true
}

func (s *Server) handleTopAssets(c *gin.Context) {
	latest, err := s.candles.GetLatestPerAsset(c.Request.Context())
	if err != nil {
		s.countStoreError("candles")
		s.logger.Error().Err(err).Msg("load latest candles")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	assets, err := s.assets.GetAll(c.Request.Context())
	if err != nil {
		s.countStoreError("assets")
		s.logger.Error().Err(err).Msg("load assets")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	assetByID := make(map[int64]*domain.Asset, len(assets))
	for _, a := range assets {
		assetByID[a.AssetID] = a
	}

	out := make([]topAssetResponse, 0, len(latest))
	for _, candle := range latest {
		asset, ok := assetByID[candle.AssetID]
		if !ok {
			continue
		}
		out = append(out, topAssetResponse{
			Symbol:    asset.Symbol,
			Name:      asset.Name,
			Price:     candle.Close,
			Timestamp: candle.Timestamp,
		})
	}
	c.JSON(http.StatusOK, gin.H{"assets": out})
}

func (s *Server) handlePriceChart(c *gin.Context) {
	asset, ok := s.resolveAsset(c)
	if !ok {
		return
	}

	limit := defaultChartLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxChartLimit {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be between 1 and 1000"})
			return
		}
		limit = parsed
	}

	candles, err := s.candles.GetRecent(c.Request.Context(), asset.AssetID, limit)
	if err != nil {
		s.countStoreError("candles")
		s.logger.Error().Err(err).Str("symbol", asset.Symbol).Msg("load candles")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	if len(candles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "no price data for " + asset.Symbol})
		return
	}

	// Stored newest first, charted oldest first.
	resp := chartResponse{Symbol: asset.Symbol}
	for i := len(candles) - 1; i >= 0; i-- {
		candle := candles[i]
		resp.X = append(resp.X, candle.Timestamp)
		resp.Y = append(resp.Y, [4]float64{candle.Open, candle.High, candle.Low, candle.Close})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePredict(c *gin.Context) {
	asset, ok := s.resolveAsset(c)
	if !ok {
		return
	}

	code := c.DefaultQuery("timeframe", domain.DefaultTimeframeCode)
	tf, err := s.timeframes.GetByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "timeframe not found: " + code})
			return
		}
		s.countStoreError("timeframes")
		s.logger.Error().Err(err).Str("timeframe", code).Msg("load timeframe")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	points, err := s.predictor.Generate(c.Request.Context(), asset, tf, currentUser(c).UserID)
	if err != nil {
		switch {
		case errors.Is(err, features.ErrInsufficientData):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		case errors.Is(err, inference.ErrModel):
			c.JSON(http.StatusBadGateway, gin.H{"detail": "prediction model unavailable"})
		default:
			s.logger.Error().Err(err).Str("symbol", asset.Symbol).Msg("prediction pipeline failed")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "prediction failed"})
		}
		return
	}

	resp := predictResponse{
		Symbol:      asset.Symbol,
		Timeframe:   tf.Code,
		ModelUsed:   domain.ModelLabel,
		Predictions: make([]predictionPoint, 0, len(points)),
	}
	if len(points) > 0 {
		resp.Confidence = points[0].Confidence
	}
	for _, p := range points {
		resp.Predictions = append(resp.Predictions, predictionPoint{
			Timestamp:      p.Timestamp,
			PredictedPrice: p.PredictedPrice,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleUploadCSV(c *gin.Context) {
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

	code := c.DefaultPostForm("timeframe", domain.DefaultTimeframeCode)
	inserted, err := s.importer.Import(c.Request.Context(), file, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}
