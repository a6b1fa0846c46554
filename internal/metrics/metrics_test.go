package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	c := NewCollector()

	c.ObserveRequest("/coins/markets", 200, 120*time.Millisecond)
	c.ObserveRequest("/coins/markets", 429, 10*time.Millisecond)
	c.ObserveRequest("/coins/markets", 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiRequests.WithLabelValues("/coins/markets", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiRequests.WithLabelValues("/coins/markets", "429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiRequests.WithLabelValues("/coins/markets", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.apiLatency))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	a.RecordPriceFetch("committed")
	a.SetWatchlistSize(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.priceFetches.WithLabelValues("committed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.priceFetches.WithLabelValues("committed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(a.watchlistSize))
}

func TestHandler(t *testing.T) {
	c := NewCollector()
	c.RecordPriceFetch("failed")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `tokenfolio_price_fetches_total{outcome="failed"} 1`), body)
}
