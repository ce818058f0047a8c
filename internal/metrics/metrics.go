// Package metrics exposes scheduler and debug channel activity as Prometheus
// metrics. A Collector observes every transaction report and every tweak
// command; it owns its own registry so several runtimes never collide.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/tweak"
)

// Namespace prefixes every metric name.
const Namespace = "xodrun"

// Collector implements engine.Observer and tweak.Observer.
type Collector struct {
	registry *prometheus.Registry

	transactions    prometheus.Counter
	evaluations     prometheus.Counter
	deferTriggers   prometheus.Counter
	timeoutsFired   prometheus.Counter
	nodeErrors      prometheus.Counter
	transactionTime prometheus.Gauge
	duration        prometheus.Histogram
	tweaks          *prometheus.CounterVec
	tweaksIgnored   *prometheus.CounterVec
}

var (
	_ engine.Observer = (*Collector)(nil)
	_ tweak.Observer  = (*Collector)(nil)
)

// New creates a collector with its metrics registered. withRuntime adds the
// Go runtime and process collectors.
func New(withRuntime bool) *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transactions_total",
			Help:      "Total number of transactions run",
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "node_evaluations_total",
			Help:      "Total number of node evaluations in the main pass",
		}),
		deferTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "defer_triggers_total",
			Help:      "Total number of defer node evaluations in the pre-pass",
		}),
		timeoutsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "timeouts_fired_total",
			Help:      "Total number of node timeouts that fired",
		}),
		nodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "node_errors_total",
			Help:      "Total number of failed node evaluations",
		}),
		transactionTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "transaction_time_milliseconds",
			Help:      "Transaction time of the latest transaction",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "transaction_duration_seconds",
			Help:      "Wall time spent in a transaction",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		tweaks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tweaks_applied_total",
			Help:      "Total number of debug tweaks applied",
		}, []string{"type"}),
		tweaksIgnored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tweaks_ignored_total",
			Help:      "Total number of debug channel lines dropped",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		c.transactions,
		c.evaluations,
		c.deferTriggers,
		c.timeoutsFired,
		c.nodeErrors,
		c.transactionTime,
		c.duration,
		c.tweaks,
		c.tweaksIgnored,
	)
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return c
}

// ObserveTransaction records one transaction report.
func (c *Collector) ObserveTransaction(r engine.Report) {
	c.transactions.Inc()
	c.evaluations.Add(float64(r.Evaluated))
	c.deferTriggers.Add(float64(r.Deferred))
	c.timeoutsFired.Add(float64(r.TimedOut))
	c.nodeErrors.Add(float64(r.Failed))
	c.transactionTime.Set(float64(r.Time))
	c.duration.Observe(r.Elapsed.Seconds())
}

// TweakApplied records an applied tweak.
func (c *Collector) TweakApplied(_ node.ID, t tweak.Type) {
	c.tweaks.WithLabelValues(t.String()).Inc()
}

// TweakIgnored records a dropped debug channel line.
func (c *Collector) TweakIgnored(reason string) {
	c.tweaksIgnored.WithLabelValues(reason).Inc()
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
