package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evcharge/app/plugins"
	"github.com/kilianp07/evcharge/core/charging"
	"github.com/kilianp07/evcharge/pkg/export"
	"github.com/kilianp07/evcharge/qa/scenarios"
)

var (
	validateProfiles  string
	validateScenarios string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration, a profiles CSV or a scenario file",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateProfiles, "profiles", "", "profiles CSV to validate")
	validateCmd.Flags().StringVar(&validateScenarios, "scenarios", "", "scenario YAML file to validate")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range cfg.Policies {
		if _, err := charging.NewPolicy(p); err != nil {
			return err
		}
	}
	catalog := plugins.Available()
	fmt.Fprintf(out, "config ok: %d policies configured\n", len(cfg.Policies))
	fmt.Fprintf(out, "available policies: %s\n", strings.Join(catalog.Policies, ", "))
	fmt.Fprintf(out, "available sinks: %s\n", strings.Join(catalog.Sinks, ", "))

	if validateProfiles != "" {
		f, err := os.Open(validateProfiles)
		if err != nil {
			return err
		}
		defer f.Close()
		fleet, err := export.ReadProfiles(f)
		if err != nil {
			return fmt.Errorf("%s: %w", validateProfiles, err)
		}
		fmt.Fprintf(out, "profiles ok: %d vehicles\n", len(fleet))
	}
	if validateScenarios != "" {
		scs, err := scenarios.Load(validateScenarios)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "scenarios ok: %d scenarios\n", len(scs))
	}
	return nil
}
