// Package app wires the shared infrastructure used by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/whyyagswhy/dealcalc-sub000/internal/config"
	"github.com/whyyagswhy/dealcalc-sub000/internal/jobs"
	"github.com/whyyagswhy/dealcalc-sub000/internal/quote"
	"github.com/whyyagswhy/dealcalc-sub000/internal/store"
)

// Dependencies holds the connections and services shared across a process.
type Dependencies struct {
	DB       *pgxpool.Pool
	Queries  *store.Queries
	Redis    *redis.Client
	Quotes   *quote.Service
	Enqueuer *jobs.Enqueuer

	logger zerolog.Logger
}

// Options tweaks Open.
type Options struct {
	// RedisMetrics enables redisotel metric instrumentation.
	RedisMetrics bool
}

// Open connects to Postgres and Redis and builds the quote service on top.
// Callers must Close the result.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Dependencies, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	rdb, err := NewRedis(ctx, cfg.RedisURL, opts.RedisMetrics, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	deps := &Dependencies{
		DB:       pool,
		Queries:  store.New(pool),
		Redis:    rdb,
		Enqueuer: jobs.NewEnqueuer(rdb),
		logger:   logger,
	}
	deps.Quotes, err = NewQuoteService(cfg, deps.Queries, rdb, logger)
	if err != nil {
		deps.Close()
		return nil, err
	}
	return deps, nil
}

// NewRedis parses url, instruments the client with OpenTelemetry and pings it.
func NewRedis(ctx context.Context, url string, metrics bool, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewQuoteService builds the quote service from configuration.
func NewQuoteService(cfg *config.Config, queries *store.Queries, rdb redis.UniversalClient, logger zerolog.Logger) (*quote.Service, error) {
	return quote.NewService(quote.ServiceConfig{
		Queries:            queries,
		Cache:              quote.NewCache(rdb, cfg.SnapshotCacheTTL),
		PriorityCategories: cfg.PriorityCategories,
		PriorityEditions:   cfg.PriorityEditions,
		CurrencyCode:       cfg.CurrencyCode,
		Locale:             cfg.Locale,
		DefaultLimit:       cfg.SearchDefaultLimit,
		MaxLimit:           cfg.SearchMaxLimit,
		Logger:             logger.With().Str("component", "quote").Logger(),
	})
}

// Close releases every connection in reverse order of creation.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	if d.Enqueuer != nil {
		if err := d.Enqueuer.Close(); err != nil {
			d.logger.Error().Err(err).Msg("close task client")
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.logger.Error().Err(err).Msg("close redis")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
