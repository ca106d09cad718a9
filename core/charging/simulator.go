package charging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/evcharge/core/logger"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/internal/eventbus"
)

// DefaultChargingPowerKW is the constant charger power used when none is set.
const DefaultChargingPowerKW = 7.0

// ErrInvalidParams wraps every simulation parameter error.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Params are the fixed inputs of a simulation run.
type Params struct {
	ChargingPowerKW float64   `json:"charging_power_kw"`
	Tolerance       Tolerance `json:"tolerance"`
	// Workers bounds the number of vehicles allocated concurrently.
	Workers int `json:"workers"`
}

// DefaultParams returns 7 kW charging, standard tolerances and one worker.
func DefaultParams() Params {
	return Params{ChargingPowerKW: DefaultChargingPowerKW, Tolerance: DefaultTolerance(), Workers: 1}
}

// Validate checks that the parameters describe a runnable simulation.
func (p Params) Validate() error {
	if p.ChargingPowerKW <= 0 {
		return fmt.Errorf("%w: charging_power_kw must be positive", ErrInvalidParams)
	}
	if err := p.Tolerance.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidParams)
	}
	return nil
}

// AllocationEvent is published once per vehicle during a run.
type AllocationEvent struct {
	RunID  string
	Policy string
	Allocation
}

// Run holds everything produced by simulating one policy over a fleet.
type Run struct {
	ID         string                   `json:"id"`
	Policy     string                   `json:"policy"`
	Params     Params                   `json:"params"`
	Results    []model.AllocationResult `json:"results"`
	Hourly     []model.HourlyEnergy     `json:"-"`
	Curve      model.FleetLoadCurve     `json:"fleet_load"`
	Metrics    model.FleetMetrics       `json:"metrics"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
}

// Option customises a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger used for run progress.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEvents publishes an AllocationEvent per vehicle on bus.
func WithEvents(bus *eventbus.TypedBus[AllocationEvent]) Option {
	return func(s *Simulator) { s.events = bus }
}

// Simulator runs charging policies over a fleet of vehicles.
type Simulator struct {
	params Params
	log    logger.Logger
	events *eventbus.TypedBus[AllocationEvent]
}

// NewSimulator validates params and returns a Simulator.
func NewSimulator(params Params, opts ...Option) (*Simulator, error) {
	params.Tolerance.SetDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{params: params, log: logger.Nop{}}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Params returns the parameters the simulator was built with.
func (s *Simulator) Params() Params { return s.params }

func (s *Simulator) workers() int {
	if s.params.Workers < 1 {
		return 1
	}
	return s.params.Workers
}

// Run allocates every vehicle under policy and aggregates the fleet load.
// Profiles are validated first and nothing is simulated if one is invalid.
// Results keep the order of profiles whatever the number of workers.
func (s *Simulator) Run(ctx context.Context, policy Policy, profiles []model.EVProfile) (*Run, error) {
	if policy == nil {
		return nil, fmt.Errorf("%w: nil policy", ErrInvalidParams)
	}
	if err := model.ValidateProfiles(profiles); err != nil {
		return nil, fmt.Errorf("validate profiles: %w", err)
	}

	run := &Run{
		ID:        uuid.NewString(),
		Policy:    policy.Name(),
		Params:    s.params,
		Results:   make([]model.AllocationResult, len(profiles)),
		Hourly:    make([]model.HourlyEnergy, len(profiles)),
		StartedAt: time.Now().UTC(),
	}
	s.log.Infof("run %s: simulating %d EVs with policy %s at %.2f kW", run.ID, len(profiles), run.Policy, s.params.ChargingPowerKW)

	var acc LoadAccumulator
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, p := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := Allocate(p, s.params.ChargingPowerKW, policy.HourPreference(p), s.params.Tolerance)
			run.Results[i] = a.Result
			run.Hourly[i] = a.Hourly
			acc.Add(a.Hourly)
			s.log.Debugw("ev allocated", map[string]any{
				"run_id":    run.ID,
				"policy":    run.Policy,
				"ev_id":     a.Result.EVID,
				"delivered": a.Result.EnergyDeliveredKWh,
				"completed": a.Result.Completed,
			})
			if s.events != nil {
				s.events.Publish(AllocationEvent{RunID: run.ID, Policy: run.Policy, Allocation: a})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}

	run.Curve = acc.Curve()
	run.Metrics = ComputeMetrics(run.Curve, run.Results)
	run.FinishedAt = time.Now().UTC()
	s.log.Infof("run %s: peak %.3f kW, completion %.2f%%", run.ID, run.Metrics.PeakLoadKW, run.Metrics.CompletionRatePct)
	return run, nil
}

// RunAll simulates each policy over the same fleet, in order.
func (s *Simulator) RunAll(ctx context.Context, policies []Policy, profiles []model.EVProfile) ([]*Run, error) {
	runs := make([]*Run, 0, len(policies))
	for _, p := range policies {
		r, err := s.Run(ctx, p, profiles)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}
