package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/experiment"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Compare the four classic 128-byte caches.",
	Long: "`demo` runs the demonstration trace through a direct-mapped, a " +
		"2-way, a 4-way, and a fully associative cache, all with 16-byte " +
		"lines, and prints the hits and misses of each. Other caches can be " +
		"listed in a YAML file given with --configs.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		configs, err := configsOption(cmd)
		if err != nil {
			return err
		}

		if configs == nil {
			configs = experiment.Canonical()
		}

		results, done, err := runExperiment(cmd, configs, experiment.MakeRunner())
		defer done()

		if err != nil {
			return err
		}

		return printResults(cmd, cmd.OutOrStdout(), results)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)

	addConfigsFlag(demoCmd)
	addPolicyFlag(demoCmd)
	addTraceFlag(demoCmd)
	addRecordFlags(demoCmd)
	addFormatFlag(demoCmd)
}
