package metrics

import (
	"errors"
	"io"
	"time"

	"github.com/kilianp07/evcharge/core/charging"
	"github.com/kilianp07/evcharge/core/model"
)

// RunReport is the summary of one simulation run handed to result sinks.
type RunReport struct {
	RunID           string
	Scenario        string
	Policy          string
	ChargingPowerKW float64
	Curve           model.FleetLoadCurve
	Metrics         model.FleetMetrics
	Results         []model.AllocationResult
	Time            time.Time
}

// NewReport builds a RunReport from a finished run. An empty scenario name
// defaults to the policy name.
func NewReport(scenario string, run *charging.Run) RunReport {
	if scenario == "" {
		scenario = run.Policy
	}
	return RunReport{
		RunID:           run.ID,
		Scenario:        scenario,
		Policy:          run.Policy,
		ChargingPowerKW: run.Params.ChargingPowerKW,
		Curve:           run.Curve,
		Metrics:         run.Metrics,
		Results:         run.Results,
		Time:            run.FinishedAt,
	}
}

// RunSink records simulation runs for observability purposes.
type RunSink interface {
	RecordRun(r RunReport) error
}

// NopSink implements RunSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunReport) error { return nil }

// MultiSink fans a report out to several sinks.
type MultiSink struct {
	Sinks []RunSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...RunSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the report to every sink. A failing sink does not
// prevent the others from recording; all errors are joined.
func (m *MultiSink) RecordRun(r RunReport) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRun(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases the sink if it holds resources.
func Close(s RunSink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
