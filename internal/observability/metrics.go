package observability

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/gravsim/internal/physics"
)

// Collector exports simulator progress as Prometheus metrics. Register it
// on a simulator with AddObserver.
type Collector struct {
	gatherer prometheus.Gatherer
	g        float64

	Steps         prometheus.Counter
	StepIntervals prometheus.Histogram
	Energy        prometheus.Gauge
	Bodies        prometheus.Gauge

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. g is used to evaluate total energy.
func NewCollector(reg prometheus.Registerer, g float64) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if gr, ok := reg.(prometheus.Gatherer); ok {
		gatherer = gr
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gravsim_steps_total",
		Help: "Total number of completed integration steps.",
	}), "gravsim_steps_total")
	if err != nil {
		return nil, err
	}

	intervals, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gravsim_step_interval_seconds",
		Help:    "Wall-clock time between consecutive completed steps.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
	}), "gravsim_step_interval_seconds")
	if err != nil {
		return nil, err
	}

	energy, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gravsim_system_energy",
		Help: "Total kinetic plus potential energy after the last step.",
	}), "gravsim_system_energy")
	if err != nil {
		return nil, err
	}

	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gravsim_bodies",
		Help: "Number of bodies in the simulated system.",
	}), "gravsim_bodies")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		g:             g,
		Steps:         steps,
		StepIntervals: intervals,
		Energy:        energy,
		Bodies:        bodies,
		now:           time.Now,
	}, nil
}

func (c *Collector) OnStep(step int, t float64, sys *physics.System) {
	if c == nil {
		return
	}
	c.Steps.Inc()
	c.Energy.Set(sys.Energy(c.g))
	c.Bodies.Set(float64(sys.Len()))

	c.mu.Lock()
	now := c.now()
	if !c.last.IsZero() {
		c.StepIntervals.Observe(now.Sub(c.last).Seconds())
	}
	c.last = now
	c.mu.Unlock()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
