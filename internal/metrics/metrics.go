// Package metrics exposes Prometheus collectors for the crawl pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapeFetchesTotal         *prometheus.CounterVec
	scrapeFetchRetriesTotal    prometheus.Counter
	scrapeFetchDurationSeconds *prometheus.HistogramVec
	fleetLaunchesTotal         *prometheus.CounterVec
	channelUpdatesTotal        *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapeFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_fetches_total",
				Help: "Total number of scrape fetches, labeled by source kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		scrapeFetchRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scrape_fetch_retries_total",
				Help: "Total number of fetch attempts that were retried.",
			},
		)

		scrapeFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scrape_fetch_duration_seconds",
				Help:    "Histogram of fetch latencies, labeled by source kind.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"kind"},
		)

		fleetLaunchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleet_launches_total",
				Help: "Total number of container group launches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		channelUpdatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_updates_total",
				Help: "Total number of channel update runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

// Handler returns the exposition handler for the registered collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one fetch and its latency.
func ObserveFetch(kind, outcome string, duration time.Duration) {
	scrapeFetchesTotal.WithLabelValues(kind, outcome).Inc()
	scrapeFetchDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveRetry increments the retry counter.
func ObserveRetry() {
	scrapeFetchRetriesTotal.Inc()
}

// ObserveLaunch increments the fleet launch counter for the given outcome.
func ObserveLaunch(outcome string) {
	fleetLaunchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveChannelUpdate increments the channel update counter.
func ObserveChannelUpdate(outcome string) {
	channelUpdatesTotal.WithLabelValues(outcome).Inc()
}
