package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canaclima/cana-clima/internal/fetch"
)

// Outcome maps a fetch error to the label used by UpstreamRequests.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, fetch.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}

// Metrics holds the Prometheus instruments for the ingestion pipelines.
type Metrics struct {
	CacheLookups     *prometheus.CounterVec // labels: pipeline={weather,quotation,news}, result={hit,miss}
	UpstreamRequests *prometheus.CounterVec // labels: upstream={openmeteo,quotation,nominatim,newsapi}, outcome={success,timeout,error}
	ScrapeDuration   prometheus.Histogram
	ScrapeRecords    prometheus.Counter
	ScrapeSkips      prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CacheLookups,
		m.UpstreamRequests,
		m.ScrapeDuration,
		m.ScrapeRecords,
		m.ScrapeSkips,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cana_clima",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by pipeline and result.",
		}, []string{"pipeline", "result"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cana_clima",
			Name:      "upstream_requests_total",
			Help:      "Outbound requests by upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		ScrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cana_clima",
			Name:      "scrape_duration_seconds",
			Help:      "Duration of a full quotation page scrape.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ScrapeRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cana_clima",
			Name:      "scrape_records_total",
			Help:      "Quotation records successfully parsed.",
		}),
		ScrapeSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cana_clima",
			Name:      "scrape_skipped_blocks_total",
			Help:      "Quotation blocks skipped due to parse failures.",
		}),
	}
}
