// Package httpapi exposes the service over REST.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"crypto-predict/internal/auth"
	"crypto-predict/internal/backtest"
	"crypto-predict/internal/ingest"
	"crypto-predict/internal/observability"
	"crypto-predict/internal/prediction"
	"crypto-predict/internal/reporting"
	"crypto-predict/internal/storage"
)

// sentimentPageSize caps one sentiment history response.
const sentimentPageSize = 100

// Pinger reports backing-store liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Server wires stores and services into HTTP handlers.
type Server struct {
	assets     storage.AssetStore
	timeframes storage.TimeframeStore
	candles    storage.CandleStore
	sentiments storage.SentimentStore
	auth       *auth.Service
	predictor  *prediction.Service
	reporter   *backtest.Reporter
	reports    *reporting.Generator
	importer   *ingest.CSVImporter
	pinger     Pinger
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// Deps collects the server's collaborators.
type Deps struct {
	Assets     storage.AssetStore
	Timeframes storage.TimeframeStore
	Candles    storage.CandleStore
	Sentiments storage.SentimentStore
	Auth       *auth.Service
	Predictor  *prediction.Service
	Reporter   *backtest.Reporter
	Reports    *reporting.Generator
	Importer   *ingest.CSVImporter
	Pinger     Pinger
	Metrics    *observability.Metrics
	Logger     zerolog.Logger
}

// NewServer creates the HTTP server.
func NewServer(deps Deps) *Server {
	pinger := deps.Pinger
	if pinger == nil {
		pinger = PingerFunc(func(context.Context) error { return nil })
	}
	return &Server{
		assets:     deps.Assets,
		timeframes: deps.Timeframes,
		candles:    deps.Candles,
		sentiments: deps.Sentiments,
		auth:       deps.Auth,
		predictor:  deps.Predictor,
		reporter:   deps.Reporter,
		reports:    deps.Reports,
		importer:   deps.Importer,
		pinger:     pinger,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With().Str("component", "httpapi").Logger(),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	if s.metrics != nil {
		router.Use(s.observeRequests())
	}

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
			authGroup.GET("/me", s.authRequired(), s.handleMe)
		}

		prices := api.Group("/prices")
		{
			prices.GET("/top-assets", s.handleTopAssets)
			prices.GET("/:symbol", s.handlePriceChart)
			prices.GET("/predict/:symbol", s.authRequired(), s.handlePredict)
			prices.POST("/upload-csv", s.authRequired(), s.adminRequired(), s.handleUploadCSV)
		}

		api.GET("/sentiment/:symbol", s.authRequired(), s.handleSentiment)
		api.POST("/sentiment/upload-csv", s.authRequired(), s.adminRequired(), s.handleUploadSentimentCSV)

		admin := api.Group("/admin", s.authRequired(), s.adminRequired())
		{
			admin.GET("/stats", s.handleStats)
			admin.GET("/accuracy-report", s.handleAccuracyReport)
		}
	}

	return router
}

func (s *Server) countStoreError(store string) {
	if s.metrics != nil {
		s.metrics.DBQueryErrors.WithLabelValues(store).Inc()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.pinger.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
