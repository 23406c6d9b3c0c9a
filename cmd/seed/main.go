// Package main applies migrations, seeds reference data and optionally
// backfills candle history from the exchange.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/ingest"
	"crypto-predict/internal/storage"
	pgstore "crypto-predict/internal/storage/postgres"
)

var seedAssets = []domain.Asset{
	{Symbol: "BTC", Name: "Bitcoin"},
	{Symbol: "ETH", Name: "Ethereum"},
	{Symbol: "BNB", Name: "Binance Coin"},
	{Symbol: "SOL", Name: "Solana"},
	{Symbol: "DOGE", Name: "Dogecoin"},
}

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	binanceURL := flag.String("binance-url", "https://api.binance.com", "Exchange REST base URL")
	backfill := flag.Bool("backfill", false, "Fetch recent candle history for every seeded asset")
	adminEmail := flag.String("admin-email", os.Getenv("ADMIN_EMAIL"), "Create an admin user with this email")
	adminPassword := flag.String("admin-password", os.Getenv("ADMIN_PASSWORD"), "Password for the admin user")
	flag.Parse()

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn (or POSTGRES_DSN) is required")
		os.Exit(1)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := pgstore.Migrate(*postgresDSN); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	assets := pgstore.NewAssetStore(pool)
	timeframes := pgstore.NewTimeframeStore(pool)
	users := pgstore.NewUserStore(pool)
	candles := pgstore.NewCandleStore(pool)

	tf := &domain.Timeframe{Code: domain.DefaultTimeframeCode, Description: "1 hour"}
	if err := timeframes.Insert(ctx, tf); err != nil {
		if !errors.Is(err, storage.ErrDuplicateKey) {
			logger.Fatal().Err(err).Msg("seed timeframe")
		}
		tf, err = timeframes.GetByCode(ctx, domain.DefaultTimeframeCode)
		if err != nil {
			logger.Fatal().Err(err).Msg("load timeframe")
		}
	}

	for i := range seedAssets {
		asset := seedAssets[i]
		if err := assets.Insert(ctx, &asset); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			logger.Fatal().Err(err).Str("symbol", asset.Symbol).Msg("seed asset")
		}
	}
	logger.Info().Int("assets", len(seedAssets)).Msg("reference data seeded")

	if *adminEmail != "" {
		if *adminPassword == "" {
			logger.Fatal().Msg("--admin-password is required with --admin-email")
		}
		if err := seedAdmin(ctx, users, *adminEmail, *adminPassword); err != nil {
			logger.Fatal().Err(err).Msg("seed admin user")
		}
		logger.Info().Str("email", *adminEmail).Msg("admin user ready")
	}

	if *backfill {
		fetcher := ingest.NewBinanceFetcher(*binanceURL, candles, logger)
		all, err := assets.GetAll(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("list assets")
		}
		for _, asset := range all {
			n, err := fetcher.Refresh(ctx, asset, tf)
			if err != nil {
				logger.Error().Err(err).Str("symbol", asset.Symbol).Msg("backfill failed")
				continue
			}
			logger.Info().Str("symbol", asset.Symbol).Int("stored", n).Msg("backfilled")
		}
	}
}

func seedAdmin(ctx context.Context, users storage.UserStore, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin := &domain.User{
		UserName:     "admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := users.Insert(ctx, admin); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return err
	}
	return nil
}
