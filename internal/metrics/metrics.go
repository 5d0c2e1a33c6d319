// Package metrics exposes prometheus instrumentation for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_http_requests_total",
			Help: "Total HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricewatch_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ScrapeAttempts counts scraper collaborator calls by retailer and
	// outcome (success or error).
	ScrapeAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_scrape_attempts_total",
			Help: "Scraper collaborator calls by retailer and outcome.",
		},
		[]string{"retailer", "outcome"},
	)

	// OffersUpserted counts price observations persisted from scrapes.
	OffersUpserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricewatch_offers_upserted_total",
			Help: "Store offers created or refreshed from scrape results.",
		},
	)

	// UnparseablePrices counts scrape results dropped because their price
	// text did not normalize to a positive amount.
	UnparseablePrices = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricewatch_unparseable_prices_total",
			Help: "Scrape results skipped because the price could not be parsed.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		ScrapeAttempts,
		OffersUpserted,
		UnparseablePrices,
	)
}

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				pattern = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}
