package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evcharge/core/metrics"
)

// PromSink exposes the latest run of every scenario as Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	load      *prometheus.GaugeVec
	peak      *prometheus.GaugeVec
	delivered *prometheus.GaugeVec
	needed    *prometheus.GaugeVec
	complete  *prometheus.GaugeVec
	shortfall *prometheus.HistogramVec
}

// NewPromSink registers the simulation metrics on the default registerer.
func NewPromSink() (coremetrics.RunSink, error) {
	s, err := NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evcharge_runs_total",
		Help: "Number of simulation runs recorded",
	}, []string{"scenario", "policy"})); err != nil {
		return nil, err
	}
	if s.load, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evcharge_fleet_load_kw",
		Help: "Fleet charging load per hour of day",
	}, []string{"scenario", "hour"})); err != nil {
		return nil, err
	}
	if s.peak, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evcharge_fleet_peak_load_kw",
		Help: "Highest hourly fleet load",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.delivered, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evcharge_energy_delivered_kwh",
		Help: "Energy delivered to the fleet",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.needed, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evcharge_energy_needed_kwh",
		Help: "Energy requested by the fleet",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.complete, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evcharge_completion_ratio",
		Help: "Fraction of vehicles that reached their energy need",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.shortfall, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evcharge_ev_shortfall_kwh",
		Help:    "Energy missing at departure for incomplete vehicles",
		Buckets: prometheus.LinearBuckets(5, 5, 10),
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// RecordRun publishes the run's load curve and metrics under its scenario.
func (s *PromSink) RecordRun(r coremetrics.RunReport) error {
	s.runs.WithLabelValues(r.Scenario, r.Policy).Inc()
	for _, p := range r.Curve {
		s.load.WithLabelValues(r.Scenario, strconv.Itoa(p.Hour)).Set(p.LoadKW)
	}
	s.peak.WithLabelValues(r.Scenario).Set(r.Metrics.PeakLoadKW)
	s.delivered.WithLabelValues(r.Scenario).Set(r.Metrics.TotalEnergyDeliveredKWh)
	s.needed.WithLabelValues(r.Scenario).Set(r.Metrics.TotalEnergyNeededKWh)
	s.complete.WithLabelValues(r.Scenario).Set(r.Metrics.CompletionRate)
	obs := s.shortfall.WithLabelValues(r.Scenario)
	for _, res := range r.Results {
		if !res.Completed {
			obs.Observe(res.EnergyShortfallKWh)
		}
	}
	return nil
}

// WriteTextfile dumps everything gathered by g in the text exposition
// format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
