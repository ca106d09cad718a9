package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/kilianp07/evcharge/app/plugins"
	"github.com/kilianp07/evcharge/config"
	"github.com/kilianp07/evcharge/core/charging"
	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/profile"
	"github.com/kilianp07/evcharge/infra/logger"
	"github.com/kilianp07/evcharge/internal/api"
	"github.com/kilianp07/evcharge/internal/eventbus"
	"github.com/kilianp07/evcharge/pkg/export"
	"github.com/kilianp07/evcharge/qa/scenarios"
)

// Service wires configuration, result sinks and the simulator together.
type Service struct {
	cfg  *config.Config
	sink coremetrics.RunSink
	bus  *eventbus.TypedBus[charging.AllocationEvent]
	log  logger.Logger

	wg sync.WaitGroup
}

// New creates a Service from the configuration and builds its sinks.
func New(cfg *config.Config) (*Service, error) {
	logger.SetLevel(cfg.Logging.Level)
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	s := &Service{
		cfg:  cfg,
		sink: sink,
		bus:  eventbus.NewTyped[charging.AllocationEvent](),
		log:  logger.New("service"),
	}
	s.watchProgress()
	return s, nil
}

// watchProgress logs every allocation published by the simulator.
func (s *Service) watchProgress() {
	ch := s.bus.Subscribe()
	progress := logger.New("progress")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for ev := range ch {
			progress.Debugw("ev allocated", map[string]any{
				"run_id":        ev.RunID,
				"policy":        ev.Policy,
				"ev_id":         ev.Result.EVID,
				"delivered_kwh": ev.Result.EnergyDeliveredKWh,
				"completed":     ev.Result.Completed,
			})
		}
	}()
}

// Fleet loads the profiles CSV when configured, otherwise generates the
// synthetic fleet.
func (s *Service) Fleet() ([]model.EVProfile, error) {
	path := s.cfg.Fleet.ProfilesPath
	if path == "" {
		fleet, err := profile.Generate(s.cfg.Fleet.Generator)
		if err != nil {
			return nil, err
		}
		s.log.Infof("generated %d profiles with seed %d", len(fleet), s.cfg.Fleet.Generator.Seed)
		return fleet, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()
	fleet, err := export.ReadProfiles(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s.log.Infof("loaded %d profiles from %s", len(fleet), path)
	return fleet, nil
}

// Scenarios returns one scenario per configured policy.
func (s *Service) Scenarios() []scenarios.Scenario {
	return scenarios.FromPolicies(s.cfg.Policies)
}

// Simulate runs the scenarios over fleet and records every run on the
// configured sinks. A failing sink is logged and does not fail the run.
func (s *Service) Simulate(ctx context.Context, scs []scenarios.Scenario, fleet []model.EVProfile) ([]scenarios.Outcome, error) {
	runner := scenarios.Runner{
		Base:      s.cfg.Simulation.Params(),
		PeakHours: s.cfg.Simulation.PeakHours,
		Logger:    logger.New("simulator"),
		Events:    s.bus,
	}
	outcomes, err := runner.Run(ctx, scs, fleet)
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		if err := s.sink.RecordRun(coremetrics.NewReport(o.Scenario.Name, o.Run)); err != nil {
			s.log.Warnf("record run %s: %v", o.Run.ID, err)
		}
	}
	return outcomes, nil
}

// WriteOutputs writes the fleet load, per-EV results and metrics of each
// outcome under the output directory and returns the written paths.
func (s *Service) WriteOutputs(outcomes []scenarios.Outcome) ([]string, error) {
	format, err := export.ParseFormat(s.cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var paths []string
	for _, o := range outcomes {
		name := o.Scenario.Name
		files := []struct {
			prefix string
			write  func(f *os.File) error
		}{
			{"fleet_load_", func(f *os.File) error { return export.WriteLoad(f, format, o.Run.Curve) }},
			{"ev_results_", func(f *os.File) error { return export.WriteResults(f, format, o.Run.Results) }},
			{"metrics_", func(f *os.File) error { return export.WriteMetrics(f, format, o.Run.Metrics) }},
		}
		for _, file := range files {
			ext := format.Ext()
			if file.prefix == "metrics_" && format == export.CSV {
				ext = ".txt"
			}
			path := filepath.Join(s.cfg.Output.Dir, file.prefix+name+ext)
			if err := writeFile(path, file.write); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// WriteProfiles writes the fleet to path in the configured format.
func (s *Service) WriteProfiles(path string, fleet []model.EVProfile) error {
	format, err := export.ParseFormat(s.cfg.Output.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return writeFile(path, func(f *os.File) error { return export.WriteProfiles(f, format, fleet) })
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Handler returns the HTTP API backed by this service's sinks.
func (s *Service) Handler() http.Handler {
	return api.NewHandler(api.Options{
		Params:         s.cfg.Simulation.Params(),
		PeakHours:      s.cfg.Simulation.PeakHours,
		Generator:      s.cfg.Fleet.Generator,
		Sink:           s.sink,
		Gatherer:       prometheus.DefaultGatherer,
		AllowedOrigins: s.cfg.API.AllowedOrigins,
		Logger:         logger.New("api"),
	})
}

// Close stops progress logging and releases the sinks.
func (s *Service) Close() error {
	s.bus.Close()
	s.wg.Wait()
	if d := s.bus.Dropped(); d > 0 {
		s.log.Debugf("%d progress events dropped", d)
	}
	return coremetrics.Close(s.sink)
}
