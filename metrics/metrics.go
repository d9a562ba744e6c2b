// Package metrics exports backend resolution statistics as Prometheus
// metrics.
//
//	c := metrics.New("stackwire")
//	prometheus.MustRegister(c)
//	b, err := stackwire.New(factories, append(opts, c.Options()...)...)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danpasecinic/stackwire"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"

	statusSuccess = "success"
	statusError   = "error"
)

// Collector implements prometheus.Collector over the observer hooks of a
// backend. One collector can observe any number of backends.
type Collector struct {
	lookups          *prometheus.CounterVec
	generateDuration *prometheus.HistogramVec
	factories        *prometheus.CounterVec
	factoryDuration  *prometheus.HistogramVec
	tokens           *prometheus.CounterVec
	stacks           *prometheus.CounterVec
	outputs          *prometheus.CounterVec
}

func New(namespace string) *Collector {
	return &Collector{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "construct_lookups_total",
				Help:      "Construct container lookups by group and result",
			}, []string{"group", "result"},
		),
		generateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "construct_generate_duration_seconds",
				Help:      "Time spent producing constructs that were not cached",
				Buckets:   prometheus.DefBuckets,
			}, []string{"group"},
		),
		factories: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "factory_invocations_total",
				Help:      "Factory invocations by resource and status",
			}, []string{"resource", "status"},
		),
		factoryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "factory_duration_seconds",
				Help:      "Duration of factory invocations",
				Buckets:   prometheus.DefBuckets,
			}, []string{"resource"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_registered_total",
				Help:      "Capability tokens registered by factories",
			}, []string{"token"},
		),
		stacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "custom_stacks_total",
				Help:      "Custom stack creation attempts by status",
			}, []string{"status"},
		),
		outputs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "custom_outputs_total",
				Help:      "Custom output fragments added by status",
			}, []string{"status"},
		),
	}
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.lookups,
		c.generateDuration,
		c.factories,
		c.factoryDuration,
		c.tokens,
		c.stacks,
		c.outputs,
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.collectors() {
		m.Describe(ch)
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collectors() {
		m.Collect(ch)
	}
}

// Options returns the backend options that feed this collector.
func (c *Collector) Options() []stackwire.Option {
	return []stackwire.Option{
		stackwire.WithComputeObserver(c.observeCompute),
		stackwire.WithFactoryObserver(c.observeFactory),
		stackwire.WithTokenObserver(c.observeToken),
		stackwire.WithStackObserver(c.observeStack),
		stackwire.WithOutputObserver(c.observeOutput),
	}
}

func (c *Collector) observeCompute(_, group string, hit bool, d time.Duration, err error) {
	switch {
	case err != nil:
		c.lookups.WithLabelValues(group, resultError).Inc()
	case hit:
		c.lookups.WithLabelValues(group, resultHit).Inc()
	default:
		c.lookups.WithLabelValues(group, resultMiss).Inc()
		c.generateDuration.WithLabelValues(group).Observe(d.Seconds())
	}
}

func (c *Collector) observeFactory(resource string, d time.Duration, err error) {
	c.factories.WithLabelValues(resource, status(err)).Inc()
	c.factoryDuration.WithLabelValues(resource).Observe(d.Seconds())
}

func (c *Collector) observeToken(token, _ string) {
	c.tokens.WithLabelValues(token).Inc()
}

func (c *Collector) observeStack(_ string, err error) {
	c.stacks.WithLabelValues(status(err)).Inc()
}

func (c *Collector) observeOutput(err error) {
	c.outputs.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}
