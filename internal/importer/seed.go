package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/whyyagswhy/dealcalc-sub000/internal/approval"
	"github.com/whyyagswhy/dealcalc-sub000/internal/productname"
	"github.com/whyyagswhy/dealcalc-sub000/internal/store"
)

// SeedLockKey guards reseeds against concurrent runs.
const SeedLockKey = "dealcalc:lock:seed"

// TxFunc runs fn inside one database transaction.
type TxFunc func(ctx context.Context, fn func(*store.Queries) error) error

// Locker serialises seeding across processes.
type Locker interface {
	Do(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// RefreshEnqueuer asks the workers to reload the reference snapshot.
type RefreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context) (bool, error)
}

// Data is one batch of reference data. A nil slice leaves that table untouched.
type Data struct {
	Thresholds []approval.DiscountThreshold
	Products   []productname.PriceBookProduct
}

// Summary reports what a seed run changed.
type Summary struct {
	ThresholdsDeleted  int64 `json:"thresholdsDeleted"`
	ThresholdsInserted int   `json:"thresholdsInserted"`
	ProductsUpserted   int   `json:"productsUpserted"`
	RefreshQueued      bool  `json:"refreshQueued"`
}

// Seeder writes reference data in a single transaction.
type Seeder struct {
	tx       TxFunc
	locker   Locker
	lockTTL  time.Duration
	enqueuer RefreshEnqueuer
	logger   zerolog.Logger
}

// SeederConfig wires a Seeder. Locker and Enqueuer are optional.
type SeederConfig struct {
	Tx       TxFunc
	Locker   Locker
	LockTTL  time.Duration
	Enqueuer RefreshEnqueuer
	Logger   zerolog.Logger
}

// NewSeeder validates cfg and returns a Seeder.
func NewSeeder(cfg SeederConfig) (*Seeder, error) {
	if cfg.Tx == nil {
		return nil, errors.New("importer: transaction runner is required")
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Seeder{tx: cfg.Tx, locker: cfg.Locker, lockTTL: ttl, enqueuer: cfg.Enqueuer, logger: cfg.Logger}, nil
}

// Seed replaces the discount matrix and upserts the price book. Threshold
// rows are stored in input order so the first matching row keeps winning.
func (s *Seeder) Seed(ctx context.Context, data Data) (Summary, error) {
	var summary Summary
	run := func(ctx context.Context) error {
		return s.tx(ctx, func(q *store.Queries) error {
			var err error
			summary, err = write(ctx, q, data)
			return err
		})
	}

	var err error
	if s.locker != nil {
		err = s.locker.Do(ctx, SeedLockKey, s.lockTTL, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return Summary{}, err
	}

	if s.enqueuer != nil {
		queued, err := s.enqueuer.EnqueueRefresh(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("enqueue snapshot refresh after seed")
		}
		summary.RefreshQueued = queued
	}
	s.logger.Info().
		Int64("thresholds_deleted", summary.ThresholdsDeleted).
		Int("thresholds_inserted", summary.ThresholdsInserted).
		Int("products_upserted", summary.ProductsUpserted).
		Bool("refresh_queued", summary.RefreshQueued).
		Msg("reference data seeded")
	return summary, nil
}

func write(ctx context.Context, q *store.Queries, data Data) (Summary, error) {
	var summary Summary
	if data.Thresholds != nil {
		deleted, err := q.DeleteAllDiscountThresholds(ctx)
		if err != nil {
			return Summary{}, err
		}
		summary.ThresholdsDeleted = deleted
		for i, t := range data.Thresholds {
			if _, err := q.InsertDiscountThreshold(ctx, t, i); err != nil {
				if store.IsUniqueViolation(err) {
					return Summary{}, fmt.Errorf("threshold row %d: %w: %v", i+1, ErrDuplicate, err)
				}
				return Summary{}, err
			}
			summary.ThresholdsInserted++
		}
	}
	for i, p := range data.Products {
		if _, err := q.UpsertPriceBookProduct(ctx, p, i); err != nil {
			return Summary{}, err
		}
		summary.ProductsUpserted++
	}
	return summary, nil
}
