package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evcharge/config"
)

var (
	genSize int
	genSeed uint64
	genOut  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic fleet and write its profiles",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&genSize, "size", 0, "number of vehicles (default fleet.generator.size)")
	generateCmd.Flags().Uint64Var(&genSeed, "seed", 0, "random seed (default fleet.generator.seed)")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "output file (default <output.dir>/ev_profiles.<format>)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	svc, cfg, err := newService(func(c *config.Config) error {
		c.Fleet.ProfilesPath = ""
		if cmd.Flags().Changed("size") {
			c.Fleet.Generator.Size = genSize
		}
		if cmd.Flags().Changed("seed") {
			c.Fleet.Generator.Seed = genSeed
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	fleet, err := svc.Fleet()
	if err != nil {
		return err
	}
	out := genOut
	if out == "" {
		out = filepath.Join(cfg.Output.Dir, "ev_profiles."+cfg.Output.Format)
	}
	if err := svc.WriteProfiles(out, fleet); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d profiles to %s\n", len(fleet), out)
	return err
}
