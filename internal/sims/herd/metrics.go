package herd

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"herding/internal/logging"
)

// Collector bundles the Prometheus metrics recorded by a Model.
type Collector struct {
	Ticks        prometheus.Counter
	GroupsFormed prometheus.Counter
	BlockedMoves prometheus.Counter
	Collisions   prometheus.Counter
	FreeAnimals  prometheus.Gauge
	Groups       prometheus.Gauge
	TickDuration prometheus.Histogram
}

// NewCollector registers herd metrics against reg, defaulting to the global
// registry when nil. Registering twice on the same registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{}
	var err error
	if c.Ticks, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "herd_ticks_total",
		Help: "Completed simulation ticks.",
	})); err != nil {
		return nil, err
	}
	if c.GroupsFormed, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "herd_groups_formed_total",
		Help: "Group ids minted by adjacency merges.",
	})); err != nil {
		return nil, err
	}
	if c.BlockedMoves, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "herd_blocked_moves_total",
		Help: "Free animal steps that found no empty neighbor.",
	})); err != nil {
		return nil, err
	}
	if c.Collisions, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "herd_group_collisions_total",
		Help: "Rigid group moves cancelled because a landing cell was taken.",
	})); err != nil {
		return nil, err
	}
	if c.FreeAnimals, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "herd_free_animals",
		Help: "Animals not yet in a group.",
	})); err != nil {
		return nil, err
	}
	if c.Groups, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "herd_groups",
		Help: "Groups with at least one member.",
	})); err != nil {
		return nil, err
	}
	if c.TickDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "herd_tick_duration_seconds",
		Help:    "Wall time spent in one tick.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})); err != nil {
		return nil, err
	}
	return c, nil
}

// Observe records one tick.
func (c *Collector) Observe(rep TickReport, elapsed time.Duration, free, groups int) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.GroupsFormed.Add(float64(len(rep.Formed)))
	c.BlockedMoves.Add(float64(len(rep.Blocked)))
	c.Collisions.Add(float64(rep.Collisions()))
	c.FreeAnimals.Set(float64(free))
	c.Groups.Set(float64(groups))
	c.TickDuration.Observe(elapsed.Seconds())
}

// Summarize flattens the herd metric families in g into log fields.
// Counters and gauges report their value, histograms their sample count.
func Summarize(g prometheus.Gatherer) ([]logging.Field, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var fields []logging.Field
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "herd_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fields = append(fields, logging.Any(mf.GetName(), m.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				fields = append(fields, logging.Any(mf.GetName(), m.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				fields = append(fields, logging.Any(mf.GetName()+"_count", m.GetHistogram().GetSampleCount()))
			}
		}
	}
	return fields, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
