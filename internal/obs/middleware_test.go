package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/whyyagswhy/dealcalc-sub000/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("dealcalc", []float64{10, 1}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/totals", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/api/v1/quotes/totals"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodPost, "/api/v1/quotes/totals", "204")))
	require.NotZero(t, testutil.CollectAndCount(metrics.ReqDur))
	require.Zero(t, testutil.ToFloat64(metrics.InFlight))
}

func TestHTTPMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("dealcalc", nil, registry)
	second := obs.NewHTTPMetrics("dealcalc", nil, registry)
	require.Same(t, first.ReqTotal, second.ReqTotal)
}

func TestDomainMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("dealcalc", registry)

	obs.IncCounter(obs.ApprovalResolutionsTotal, "L5+")
	obs.IncCounter(obs.ApprovalResolutionsTotal, "L5+")
	obs.SetGauge(obs.SnapshotRows, 42, "price_book_products")

	require.Equal(t, float64(2), testutil.ToFloat64(obs.ApprovalResolutionsTotal.WithLabelValues("L5+")))
	require.Equal(t, float64(42), testutil.ToFloat64(obs.SnapshotRows.WithLabelValues("price_book_products")))

	obs.IncCounter(nil, "ignored")
	obs.SetGauge(nil, 1, "ignored")
}
