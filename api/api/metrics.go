/* metrics.go
 * Contains the Prometheus metrics recorded by the API. Each API gets its own registry
 */

package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeUnscheduled = "unscheduled"
)

// Metrics holds the Prometheus collectors for submissions, stored records and TBA webhooks on their own registry.
// A nil *Metrics records nothing
type Metrics struct {
	Registry *prometheus.Registry

	Submissions     *prometheus.CounterVec
	PersistFailures prometheus.Counter
	Records         prometheus.Gauge
	TotalPoints     prometheus.Histogram
	RankPoints      prometheus.Histogram
	Webhooks        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with a new registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scout",
			Name:      "submissions_total",
			Help:      "Match records submitted, by outcome.",
		}, []string{"outcome"}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scout",
			Name:      "persist_failures_total",
			Help:      "Accepted records that could not be written to the database.",
		}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scout",
			Name:      "records",
			Help:      "Records held in the session repository.",
		}),
		TotalPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scout",
			Name:      "match_total_points",
			Help:      "Total points of accepted records.",
			Buckets:   prometheus.LinearBuckets(0, 10, 12),
		}),
		RankPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scout",
			Name:      "match_rank_points",
			Help:      "Ranking points of accepted records.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6},
		}),
		Webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scout",
			Name:      "tba_webhooks_total",
			Help:      "TBA webhook messages received, by message type.",
		}, []string{"type"}),
	}
	m.Registry.MustRegister(
		m.Submissions,
		m.PersistFailures,
		m.Records,
		m.TotalPoints,
		m.RankPoints,
		m.Webhooks,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) submission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) accepted(total, rankPoints int, records int) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(OutcomeAccepted).Inc()
	m.TotalPoints.Observe(float64(total))
	m.RankPoints.Observe(float64(rankPoints))
	m.Records.Set(float64(records))
}

func (m *Metrics) persistFailed() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

func (m *Metrics) setRecords(n int) {
	if m == nil {
		return
	}
	m.Records.Set(float64(n))
}

// Webhook counts a received webhook message
func (m *Metrics) Webhook(messageType string) {
	if m == nil {
		return
	}
	m.Webhooks.WithLabelValues(messageType).Inc()
}
