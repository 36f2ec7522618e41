// README: Prometheus collectors on a dedicated registry, exposed on /metrics.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// QuotesTotal counts priced quotes by trip type and profitability tier ("none" without cost data)
	QuotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pricing_quotes_total", Help: "Priced quotes by trip type and tier."},
		[]string{"trip_type", "tier"},
	)
	RoutingSources = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pricing_routing_source_total", Help: "Route legs by routing source."},
		[]string{"source"},
	)
	// SnapshotCache counts pricing snapshot lookups: hit, miss, error
	SnapshotCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pricing_snapshot_cache_total", Help: "Pricing snapshot cache lookups by result."},
		[]string{"result"},
	)
	QuoteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_quote_duration_seconds",
			Help:    "Time to price a quote including routing and snapshot load.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(QuotesTotal)
		Registry.MustRegister(RoutingSources)
		Registry.MustRegister(SnapshotCache)
		Registry.MustRegister(QuoteDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

// Handler serves the dedicated registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

func ObserveQuote(tripType, tier string, elapsed time.Duration) {
	if tier == "" {
		tier = "none"
	}
	QuotesTotal.WithLabelValues(tripType, tier).Inc()
	QuoteDuration.Observe(elapsed.Seconds())
}
