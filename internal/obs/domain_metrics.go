package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ApprovalResolutionsTotal counts approval evaluations by resolved level.
	ApprovalResolutionsTotal *prometheus.CounterVec
	// ProductSearchTotal counts product searches by outcome (hit, empty, popular).
	ProductSearchTotal *prometheus.CounterVec
	// SnapshotRefreshTotal counts reference snapshot reloads by outcome.
	SnapshotRefreshTotal *prometheus.CounterVec
	// SnapshotCacheTotal counts snapshot cache lookups by outcome.
	SnapshotCacheTotal *prometheus.CounterVec
	// SnapshotRows reports the size of the last loaded snapshot per table.
	SnapshotRows *prometheus.GaugeVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ApprovalResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approval_resolutions_total",
			Help:      "Count of approval evaluations by resolved level.",
		}, []string{"level"})
		ProductSearchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_search_total",
			Help:      "Count of product searches by result.",
		}, []string{"result"})
		SnapshotRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_refresh_total",
			Help:      "Count of reference snapshot refreshes by result.",
		}, []string{"result"})
		SnapshotCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_total",
			Help:      "Count of snapshot cache lookups by result.",
		}, []string{"result"})
		SnapshotRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_rows",
			Help:      "Rows in the most recently loaded reference snapshot.",
		}, []string{"table"})

		mustRegisterCollector(reg, ApprovalResolutionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ApprovalResolutionsTotal = v
			}
		})
		mustRegisterCollector(reg, ProductSearchTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ProductSearchTotal = v
			}
		})
		mustRegisterCollector(reg, SnapshotRefreshTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SnapshotRefreshTotal = v
			}
		})
		mustRegisterCollector(reg, SnapshotCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SnapshotCacheTotal = v
			}
		})
		mustRegisterCollector(reg, SnapshotRows, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.GaugeVec); ok {
				SnapshotRows = v
			}
		})
	})
}

// IncCounter increments vec for labels when metrics are registered.
func IncCounter(vec *prometheus.CounterVec, labels ...string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(labels...).Inc()
}

// SetGauge sets vec for labels when metrics are registered.
func SetGauge(vec *prometheus.GaugeVec, value float64, labels ...string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(labels...).Set(value)
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
