package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/mem/trace"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Print the demonstration trace.",
	Long: "`trace --out demo.txt` writes the demonstration trace in the " +
		"format --trace reads, as a starting point for new traces.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			return trace.Write(cmd.OutOrStdout(), trace.DemoTrace())
		}

		f, err := os.Create(path)
		if err != nil {
			return err
		}

		if err := trace.Write(f, trace.DemoTrace()); err != nil {
			f.Close()
			return err
		}

		return f.Close()
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.Flags().String("out", "", "File to write to instead of stdout.")
}
