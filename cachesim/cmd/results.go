package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/experiment"
)

var resultsCmd = &cobra.Command{
	Use:   "results DATABASE",
	Short: "List the results recorded with --record.",
	Long: "`results out.sqlite3` prints one row per recorded cache. " +
		"`--run-id` limits the output to a single run.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}

		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		runID, _ := cmd.Flags().GetString("run-id")

		runs, err := experiment.ReadRuns(cmd.Context(), reader, runID)
		if err != nil {
			return err
		}

		return experiment.WriteRuns(cmd.OutOrStdout(), runs)
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().String("run-id", "", "Only list rows of this run.")
}
