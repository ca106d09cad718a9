package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kilianp07/evcharge/config"
	"github.com/kilianp07/evcharge/core/factory"
	"github.com/kilianp07/evcharge/infra/metrics"
	"github.com/kilianp07/evcharge/pkg/export"
	"github.com/kilianp07/evcharge/qa/scenarios"
)

var (
	simPolicy    string
	simScenario  string
	simPower     float64
	simPeakHours []int
	simTextfile  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate one charging policy over the fleet",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simPolicy, "policy", "p", "uncontrolled", "policy type")
	f.StringVar(&simScenario, "name", "", "scenario name used in output files (default policy type)")
	f.Float64Var(&simPower, "power", 0, "charging power in kW (default simulation.charging_power_kw)")
	f.IntSliceVar(&simPeakHours, "peak-hours", nil, "peak hours for peak-avoiding policies (default simulation.peak_hours)")
	f.StringVar(&simTextfile, "prom-textfile", "", "write Prometheus metrics to this file after the run")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cfg, err := newService(func(c *config.Config) error {
		if simTextfile != "" && !hasSink(c.Metrics.Sinks, "prometheus") {
			c.Metrics.Sinks = append(c.Metrics.Sinks, factory.ModuleConfig{Type: "prometheus"})
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	name := simScenario
	if name == "" {
		name = simPolicy
	}
	peak := simPeakHours
	if len(peak) == 0 {
		peak = cfg.Simulation.PeakHours
	}
	sc := scenarios.Scenario{Name: name, Policy: simPolicy, ChargingPowerKW: simPower, PeakHours: peak}
	if err := scenarios.Validate([]scenarios.Scenario{sc}); err != nil {
		return err
	}

	fleet, err := svc.Fleet()
	if err != nil {
		return err
	}
	outcomes, err := svc.Simulate(ctx, []scenarios.Scenario{sc}, fleet)
	if err != nil {
		return err
	}
	paths, err := svc.WriteOutputs(outcomes)
	if err != nil {
		return err
	}
	if simTextfile != "" {
		if err := metrics.WriteTextfile(simTextfile, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("prometheus textfile: %w", err)
		}
		paths = append(paths, simTextfile)
	}

	out := cmd.OutOrStdout()
	run := outcomes[0].Run
	fmt.Fprintf(out, "=== %s (%s, %g kW) ===\n", name, run.Policy, run.Params.ChargingPowerKW)
	for _, p := range paths {
		fmt.Fprintf(out, "saved: %s\n", p)
	}
	fmt.Fprintln(out, "Metrics:")
	return export.WriteMetrics(out, export.CSV, run.Metrics)
}

func hasSink(sinks []factory.ModuleConfig, typ string) bool {
	for _, s := range sinks {
		if s.Type == typ {
			return true
		}
	}
	return false
}
