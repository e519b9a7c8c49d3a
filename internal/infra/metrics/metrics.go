package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the bot's Prometheus collectors, all prefixed "alcometer_".
type Metrics struct {
	SubmissionsTotal  prometheus.Counter
	DecisionsTotal    *prometheus.CounterVec
	SuspensionsTotal  prometheus.Counter
	SuggestionsTotal  prometheus.Counter
	DeliveriesTotal   *prometheus.CounterVec
	SessionsExpired   prometheus.Counter
	UpdatesTotal      *prometheus.CounterVec
	ArchiveFailures   prometheus.Counter
	HandlerPanicTotal prometheus.Counter
}

// Get registers the collectors on first use with the default registry.
func Get() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			SubmissionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "alcometer_submissions_total",
				Help: "Submissions persisted for review",
			}),
			DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "alcometer_decisions_total",
				Help: "Admin decisions by target and outcome",
			}, []string{"target", "decision"}),
			SuspensionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "alcometer_suspensions_total",
				Help: "Suspensions issued after rejections",
			}),
			SuggestionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "alcometer_suggestions_total",
				Help: "Category suggestions received",
			}),
			DeliveriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "alcometer_admin_deliveries_total",
				Help: "Admin notifications by result",
			}, []string{"result"}),
			SessionsExpired: promauto.NewCounter(prometheus.CounterOpts{
				Name: "alcometer_sessions_expired_total",
				Help: "Conversation states dropped by the sweeper",
			}),
			UpdatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "alcometer_updates_total",
				Help: "Inbound updates by kind",
			}, []string{"kind"}),
			ArchiveFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "alcometer_archive_failures_total",
				Help: "Evidence uploads that failed",
			}),
			HandlerPanicTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "alcometer_handler_panics_total",
				Help: "Recovered panics in update handlers",
			}),
		}
	})
	return globalMetrics
}
