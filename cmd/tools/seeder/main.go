package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/whyyagswhy/dealcalc-sub000/internal/app"
	"github.com/whyyagswhy/dealcalc-sub000/internal/config"
	"github.com/whyyagswhy/dealcalc-sub000/internal/importer"
	"github.com/whyyagswhy/dealcalc-sub000/internal/lock"
	"github.com/whyyagswhy/dealcalc-sub000/internal/obs"
	"github.com/whyyagswhy/dealcalc-sub000/internal/store"
)

func main() {
	thresholdsPath := flag.String("thresholds", "", "discount matrix CSV (product_name,qty_min,qty_max,level0..level4)")
	priceBookPath := flag.String("pricebook", "", "price book CSV (category,edition,monthly_list_price,annual_list_price)")
	migrateFirst := flag.Bool("migrate", false, "apply schema migrations before seeding")
	dryRun := flag.Bool("dry-run", false, "validate the files without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := obs.Component(obs.NewLogger(cfg.LogFormat, cfg.LogLevel), "seeder")

	if *thresholdsPath == "" && *priceBookPath == "" {
		logger.Fatal().Msg("nothing to seed: pass -thresholds and/or -pricebook")
	}

	var data importer.Data
	if *thresholdsPath != "" {
		data.Thresholds = mustRead(logger, *thresholdsPath, importer.ReadThresholds)
	}
	if *priceBookPath != "" {
		data.Products = mustRead(logger, *priceBookPath, importer.ReadPriceBook)
	}
	logger.Info().
		Int("thresholds", len(data.Thresholds)).
		Int("products", len(data.Products)).
		Msg("reference files parsed")
	if *dryRun {
		return
	}

	if *migrateFirst {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	deps, err := app.Open(startCtx, cfg, logger, app.Options{})
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close()

	seeder, err := importer.NewSeeder(importer.SeederConfig{
		Tx: func(ctx context.Context, fn func(*store.Queries) error) error {
			return store.InTx(ctx, deps.DB, fn)
		},
		Locker:   lock.New(deps.Redis, 250*time.Millisecond),
		Enqueuer: deps.Enqueuer,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise seeder")
	}
	summary, err := seeder.Seed(ctx, data)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed reference data")
	}
	if !summary.RefreshQueued {
		if _, err := deps.Quotes.RefreshSnapshot(ctx); err != nil {
			logger.Warn().Err(err).Msg("refresh snapshot inline")
			if err := deps.Quotes.InvalidateSnapshot(ctx); err != nil {
				logger.Warn().Err(err).Msg("invalidate cached snapshot")
			}
		}
	}
}

func mustRead[T any](logger zerolog.Logger, path string, read func(io.Reader) ([]T, error)) []T {
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("open reference file")
	}
	defer f.Close()
	rows, err := read(f)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("parse reference file")
	}
	return rows
}
