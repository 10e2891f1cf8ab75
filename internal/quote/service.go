// Package quote serves the calculators over HTTP against a cached snapshot
// of the reference data.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/whyyagswhy/dealcalc-sub000/internal/approval"
	"github.com/whyyagswhy/dealcalc-sub000/internal/common"
	"github.com/whyyagswhy/dealcalc-sub000/internal/format"
	"github.com/whyyagswhy/dealcalc-sub000/internal/obs"
	"github.com/whyyagswhy/dealcalc-sub000/internal/productname"
)

type referenceQuerier interface {
	ListDiscountThresholds(ctx context.Context) ([]approval.DiscountThreshold, error)
	ListPriceBookProducts(ctx context.Context) ([]productname.PriceBookProduct, error)
}

// Snapshot is the immutable reference data the calculators run against.
type Snapshot struct {
	Thresholds []approval.DiscountThreshold `json:"thresholds"`
	Catalog    []productname.PriceBookProduct `json:"catalog"`
	LoadedAt   time.Time                     `json:"loadedAt"`
}

// Service orchestrates snapshot loading, caching and the calculators.
type Service struct {
	queries      referenceQuerier
	cache        *Cache
	mapper       *productname.Mapper
	search       productname.SearchOptions
	formatter    *format.Formatter
	defaultLimit int
	maxLimit     int
	logger       zerolog.Logger
	now          func() time.Time
	loadTimeout  time.Duration
	loads        singleflight.Group
}

// DefaultLoadTimeout bounds a coalesced snapshot load.
const DefaultLoadTimeout = 10 * time.Second

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries            referenceQuerier
	Cache              *Cache
	Overrides          []productname.Override
	PriorityCategories []string
	PriorityEditions   []string
	CurrencyCode       string
	Locale             string
	DefaultLimit       int
	MaxLimit           int
	LoadTimeout        time.Duration
	Logger             zerolog.Logger
}

// NewService validates cfg and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("quote: queries dependency is required")
	}
	formatter, err := format.NewFormatter(cfg.CurrencyCode, cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}
	search := productname.DefaultSearchOptions
	if len(cfg.PriorityCategories) > 0 {
		search.PriorityCategories = cfg.PriorityCategories
	}
	if len(cfg.PriorityEditions) > 0 {
		search.PriorityEditions = cfg.PriorityEditions
	}
	overrides := cfg.Overrides
	if overrides == nil {
		overrides = productname.DefaultOverrides
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = productname.DefaultSearchLimit
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	loadTimeout := cfg.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = DefaultLoadTimeout
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		mapper:       productname.NewMapper(overrides, search),
		search:       search,
		formatter:    formatter,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       obs.Component(cfg.Logger, "quote"),
		now:          time.Now,
		loadTimeout:  loadTimeout,
	}, nil
}

// Formatter exposes the display formatter bound to the service locale.
func (s *Service) Formatter() *format.Formatter {
	return s.formatter
}

// Snapshot returns the reference data, reading through the cache.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	hit, err := s.cache.GetJSON(ctx, SnapshotCacheKey, &snap)
	switch {
	case err != nil:
		obs.IncCounter(obs.SnapshotCacheTotal, "error")
		s.logger.Warn().Err(err).Msg("snapshot cache read failed")
	case hit:
		obs.IncCounter(obs.SnapshotCacheTotal, "hit")
		return snap, nil
	default:
		obs.IncCounter(obs.SnapshotCacheTotal, "miss")
	}

	// Shared by every waiter; detached from the leader's cancellation.
	v, err, _ := s.loads.Do("snapshot", func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return s.load(lctx)
	})
	if err != nil {
		return Snapshot{}, common.Unavailable("reference data unavailable", err)
	}
	return v.(Snapshot), nil
}

// RefreshSnapshot reloads the reference data from the store and rewrites the
// cache regardless of its current state.
func (s *Service) RefreshSnapshot(ctx context.Context) (Snapshot, error) {
	snap, err := s.load(ctx)
	if err != nil {
		obs.IncCounter(obs.SnapshotRefreshTotal, "error")
		return Snapshot{}, err
	}
	obs.IncCounter(obs.SnapshotRefreshTotal, "ok")
	return snap, nil
}

// InvalidateSnapshot drops the cached snapshot so the next read goes to the store.
func (s *Service) InvalidateSnapshot(ctx context.Context) error {
	return s.cache.Delete(ctx, SnapshotCacheKey)
}

func (s *Service) load(ctx context.Context) (snap Snapshot, err error) {
	ctx, span := obs.StartSpan(ctx, "quote.load_snapshot")
	defer func() { obs.EndSpan(span, err) }()

	thresholds, err := s.queries.ListDiscountThresholds(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load thresholds: %w", err)
	}
	catalog, err := s.queries.ListPriceBookProducts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load price book: %w", err)
	}
	snap = Snapshot{Thresholds: thresholds, Catalog: catalog, LoadedAt: s.now().UTC()}
	span.SetAttributes(
		attribute.Int("dealcalc.thresholds", len(thresholds)),
		attribute.Int("dealcalc.products", len(catalog)),
	)
	obs.SetGauge(obs.SnapshotRows, float64(len(thresholds)), "discount_thresholds")
	obs.SetGauge(obs.SnapshotRows, float64(len(catalog)), "price_book_products")

	if err := s.cache.SetJSON(ctx, SnapshotCacheKey, snap); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot cache write failed")
	}
	s.logger.Info().
		Int("thresholds", len(thresholds)).
		Int("products", len(catalog)).
		Msg("reference snapshot loaded")
	return snap, nil
}

// Search ranks catalog rows for query. limit is clamped to the configured maximum.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]productname.SearchResult, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	limit = common.ClampLimit(limit, s.defaultLimit, s.maxLimit)
	results := productname.SearchProducts(snap.Catalog, query, limit, s.search)
	switch {
	case strings.TrimSpace(query) == "":
		obs.IncCounter(obs.ProductSearchTotal, "popular")
	case len(results) == 0:
		obs.IncCounter(obs.ProductSearchTotal, "empty")
	default:
		obs.IncCounter(obs.ProductSearchTotal, "hit")
	}
	if results == nil {
		results = []productname.SearchResult{}
	}
	return results, nil
}

// Categories groups the catalog for the product picker.
func (s *Service) Categories(ctx context.Context) ([]productname.CategoryGroup, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	groups := productname.GroupProductsByCategory(snap.Catalog, s.search.PriorityCategories)
	if groups == nil {
		groups = []productname.CategoryGroup{}
	}
	return groups, nil
}

// MatrixName maps a catalog entry to its discount matrix name.
func (s *Service) MatrixName(category string, edition *string) string {
	return s.mapper.DiscountMatrixName(category, edition)
}

// MatrixNameMulti renders a category with several editions in one bracket group.
func (s *Service) MatrixNameMulti(category string, editions []string) string {
	return productname.BuildMulti(category, editions)
}

// ResolveProduct finds the catalog row best matching a quote or matrix name.
func (s *Service) ResolveProduct(ctx context.Context, name string) (productname.PriceBookProduct, bool, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return productname.PriceBookProduct{}, false, err
	}
	p, ok := s.mapper.FindBestPriceBookMatch(snap.Catalog, name)
	return p, ok, nil
}
