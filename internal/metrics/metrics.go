package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	DealsCreated    prometheus.Counter
	DealsClosed     prometheus.Counter
	CounterApplies  *prometheus.CounterVec
	Errors          *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total chat commands processed by command and outcome.",
			}, []string{"command", "outcome"}),
			CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Latency distribution for command handling.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"command"}),
			DealsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deals_created_total",
				Help:      "Total deals registered.",
			}),
			DealsClosed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deals_closed_total",
				Help:      "Total deals closed.",
			}),
			CounterApplies: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "counter_applies_total",
				Help:      "Counters ledger applications by outcome.",
			}, []string{"outcome"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.CommandsTotal,
			metricsInstance.CommandDuration,
			metricsInstance.DealsCreated,
			metricsInstance.DealsClosed,
			metricsInstance.CounterApplies,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
