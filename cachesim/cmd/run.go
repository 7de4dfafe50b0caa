package cmd

import (
	"fmt"
	"log"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/experiment"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim/hooking"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a trace through one cache.",
	Long: "`run --line-size 16 --sets 4 --ways 2 --trace addrs.txt` reports " +
		"the hits and misses of a single cache.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		g, err := geometryOption(cmd)
		if err != nil {
			return err
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		perSet, _ := cmd.Flags().GetBool("per-set")

		runner := experiment.MakeRunner()

		if verbose {
			logger := log.New(cmd.OutOrStdout(), "", 0)
			runner = runner.WithHookFactory(func(experiment.Config) hooking.Hook {
				return trace.NewLogTracer(logger)
			})
		}

		usage := trace.NewSetUsageTracer()
		if perSet {
			runner = runner.WithHookFactory(func(experiment.Config) hooking.Hook {
				return usage
			})
		}

		results, done, err := runExperiment(cmd,
			[]experiment.Config{experiment.Custom(g)}, runner)
		defer done()

		if err != nil {
			return err
		}

		if err := printResults(cmd, cmd.OutOrStdout(), results); err != nil {
			return err
		}

		if perSet {
			return printSetUsage(cmd, usage, g.SetCount)
		}

		return nil
	},
}

func printSetUsage(
	cmd *cobra.Command,
	usage *trace.SetUsageTracer,
	numSets int,
) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)

	fmt.Fprintln(w, "SET\tHITS\tMISSES\tEVICTIONS")

	for i := 0; i < numSets; i++ {
		u := usage.Usage(i)
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", i, u.Hits, u.Misses, u.Evictions)
	}

	return w.Flush()
}

func init() {
	rootCmd.AddCommand(runCmd)

	addGeometryFlags(runCmd)
	addPolicyFlag(runCmd)
	addTraceFlag(runCmd)
	addRecordFlags(runCmd)
	addFormatFlag(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Print every access.")
	runCmd.Flags().Bool("per-set", false, "Print hits, misses, and evictions per set.")
}
