// Package metrics exports handle registry activity to Prometheus.
//
// A Collector is a resource.Observer. Subscribe it to an environment's
// registry, or pass it to oci.WithObserver:
//
//	c, err := metrics.NewCollector(prometheus.DefaultRegisterer)
//	if err != nil {
//	    return err
//	}
//	env, err := oci.New(lite.New(), oci.WithObserver(c))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/oci-runtime/resource"
)

const namespace = "oci"

// Collector counts handle acquisitions and releases per kind.
type Collector struct {
	open     *prometheus.GaugeVec
	acquired *prometheus.CounterVec
	released *prometheus.CounterVec
	failed   *prometheus.CounterVec
}

// NewCollector creates the handle metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		open: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "handles_open",
			Help:      "Native handles currently registered, by kind.",
		}, []string{"kind"}),
		acquired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handles_acquired_total",
			Help:      "Native handles registered, by kind.",
		}, []string{"kind"}),
		released: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handles_released_total",
			Help:      "Native handles released, by kind.",
		}, []string{"kind"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handle_release_errors_total",
			Help:      "Native handle releases that reported an error, by kind.",
		}, []string{"kind"}),
	}

	// Pre-create every series so dashboards see zeros before first use.
	for _, k := range resource.Kinds() {
		c.open.WithLabelValues(k.String())
		c.acquired.WithLabelValues(k.String())
		c.released.WithLabelValues(k.String())
		c.failed.WithLabelValues(k.String())
	}

	if reg != nil {
		for _, m := range c.collectors() {
			if err := reg.Register(m); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{c.open, c.acquired, c.released, c.failed}
}

// Unregister removes the metrics from reg.
func (c *Collector) Unregister(reg prometheus.Registerer) {
	for _, m := range c.collectors() {
		reg.Unregister(m)
	}
}

// OnResourceEvent implements resource.Observer.
func (c *Collector) OnResourceEvent(e resource.Event) {
	kind := e.Kind.String()
	switch e.Type {
	case resource.EventAcquired:
		c.acquired.WithLabelValues(kind).Inc()
		c.open.WithLabelValues(kind).Inc()
	case resource.EventReleased:
		c.released.WithLabelValues(kind).Inc()
		c.open.WithLabelValues(kind).Dec()
		if e.Err != nil {
			c.failed.WithLabelValues(kind).Inc()
		}
	}
}

var _ resource.Observer = (*Collector)(nil)
