package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveCheckout(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCheckout("success", 12*time.Millisecond)
	m.ObserveCheckout("success", 3*time.Millisecond)
	m.ObserveCheckout("stock_shortfall", time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("stock_shortfall")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCheckout("success", time.Millisecond)
	m.ObserveRequest("/x", http.StatusOK, time.Millisecond)
}

func TestHandlerExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRequest("/api/checkout", http.StatusCreated, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `storefront_http_requests_total{handler="/api/checkout",status="Created"} 1`))
}
