package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evcharge/pkg/export"
	"github.com/kilianp07/evcharge/qa/scenarios"
)

var (
	cmpScenarios string
	cmpJSON      bool
	cmpNoFiles   bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run several scenarios over the same fleet and compare them",
	Long: `Runs every configured policy, or every scenario of a YAML file given
with --scenarios, over the same fleet and prints a comparison table.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&cmpScenarios, "scenarios", "s", "", "scenario YAML file")
	compareCmd.Flags().BoolVar(&cmpJSON, "json", false, "print the comparison as JSON instead of a table")
	compareCmd.Flags().BoolVar(&cmpNoFiles, "no-files", false, "do not write per-scenario result files")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format := export.CSV
	if cmpJSON {
		format = export.JSON
	}
	svc, _, err := newService(nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	scs := svc.Scenarios()
	if cmpScenarios != "" {
		if scs, err = scenarios.Load(cmpScenarios); err != nil {
			return err
		}
	} else if err := scenarios.Validate(scs); err != nil {
		return err
	}

	fleet, err := svc.Fleet()
	if err != nil {
		return err
	}
	outcomes, err := svc.Simulate(ctx, scs, fleet)
	if err != nil {
		return err
	}
	if !cmpNoFiles {
		paths, err := svc.WriteOutputs(outcomes)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.ErrOrStderr(), "saved: %s\n", p)
		}
	}

	rows := make([]export.ComparisonRow, len(outcomes))
	for i, o := range outcomes {
		rows[i] = export.ComparisonRow{
			Scenario:        o.Scenario.Name,
			Policy:          o.Run.Policy,
			ChargingPowerKW: o.Run.Params.ChargingPowerKW,
			Metrics:         o.Run.Metrics,
		}
	}
	return export.WriteComparison(cmd.OutOrStdout(), format, rows)
}
