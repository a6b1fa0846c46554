// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "tokenfolio"

// Collector owns the application metrics and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	priceFetches  *prometheus.CounterVec
	watchlistSize prometheus.Gauge
}

// NewCollector creates a collector with a private registry, so several
// collectors can coexist in one process.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Price API requests by endpoint and HTTP status",
			},
			[]string{"endpoint", "status"},
		),
		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Price API request latency",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
			},
			[]string{"endpoint"},
		),
		priceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_fetches_total",
				Help:      "Settled price fetches by outcome",
			},
			[]string{"outcome"},
		),
		watchlistSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "watchlist_tokens",
				Help:      "Number of tokens on the watchlist",
			},
		),
	}

	c.registry.MustRegister(c.apiRequests, c.apiLatency, c.priceFetches, c.watchlistSize)
	return c
}

// ObserveRequest records one price API round trip. Status 0 marks a
// transport error.
func (c *Collector) ObserveRequest(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.apiRequests.WithLabelValues(endpoint, label).Inc()
	c.apiLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordPriceFetch counts a settled price fetch.
func (c *Collector) RecordPriceFetch(outcome string) {
	c.priceFetches.WithLabelValues(outcome).Inc()
}

// SetWatchlistSize updates the watchlist gauge.
func (c *Collector) SetWatchlistSize(n int) {
	c.watchlistSize.Set(float64(n))
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
