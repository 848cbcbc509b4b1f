// Package metrics exposes Prometheus instrumentation for publishing and
// searching availability.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the agenda services report to.
type Recorder interface {
	RecordPublished(slots int)
	RecordRejected(operation, reason string)
	RecordSearch(duration time.Duration, results int)
}

type Collector struct {
	slotsPublished prometheus.Counter
	rejected       *prometheus.CounterVec
	searchLatency  prometheus.Histogram
	searchResults  prometheus.Histogram
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		slotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interviewcal_slots_published_total",
			Help: "Slots persisted by successful publish calls.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interviewcal_requests_rejected_total",
			Help: "Publish and search calls rejected, by operation and reason.",
		}, []string{"operation", "reason"}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interviewcal_search_duration_seconds",
			Help:    "Duration of availability searches.",
			Buckets: prometheus.DefBuckets,
		}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interviewcal_search_results",
			Help:    "Rows on the returned page of availability searches.",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500},
		}),
	}

	reg.MustRegister(c.slotsPublished, c.rejected, c.searchLatency, c.searchResults)
	return c
}

func (c *Collector) RecordPublished(slots int) {
	c.slotsPublished.Add(float64(slots))
}

func (c *Collector) RecordRejected(operation, reason string) {
	c.rejected.WithLabelValues(operation, reason).Inc()
}

func (c *Collector) RecordSearch(duration time.Duration, results int) {
	c.searchLatency.Observe(duration.Seconds())
	c.searchResults.Observe(float64(results))
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordPublished(int)             {}
func (Nop) RecordRejected(string, string)   {}
func (Nop) RecordSearch(time.Duration, int) {}
