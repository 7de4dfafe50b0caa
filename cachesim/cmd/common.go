package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/experiment"
	"github.com/sarchlab/cachesim/mem/trace"
)

func addTraceFlag(cmd *cobra.Command) {
	cmd.Flags().String("trace", "",
		"Trace file to read addresses from, - for stdin. The demonstration "+
			"trace is used if empty. Env: "+envTrace+".")
}

func traceOption(cmd *cobra.Command) ([]uint16, error) {
	path, err := stringOption(cmd, "trace", envTrace)
	if err != nil {
		return nil, err
	}

	switch path {
	case "":
		slog.Debug("using the demonstration trace")
		return trace.DemoTrace(), nil
	case "-":
		return trace.Parse(cmd.InOrStdin())
	default:
		return trace.LoadFile(path)
	}
}

func addConfigsFlag(cmd *cobra.Command) {
	cmd.Flags().String("configs", "",
		"YAML file listing the caches to run instead of the classic four.")
}

// configsOption returns the caches listed in the --configs file, or nil if
// no file is given.
func configsOption(cmd *cobra.Command) ([]experiment.Config, error) {
	path, _ := cmd.Flags().GetString("configs")
	if path == "" {
		return nil, nil
	}

	return experiment.LoadConfigs(path)
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("record", "",
		"Record results into the given SQLite database (.sqlite3 is appended).")
	cmd.Flags().Bool("trace-accesses", false,
		"Also record every access. Requires --record.")
}

// recorderOption opens the recorder the user asked for. It returns nil if
// nothing should be recorded.
func recorderOption(
	cmd *cobra.Command,
) (datarecording.DataRecorder, bool, error) {
	path, _ := cmd.Flags().GetString("record")
	traceAccesses, _ := cmd.Flags().GetBool("trace-accesses")

	if path == "" {
		if traceAccesses {
			return nil, false, fmt.Errorf("--trace-accesses requires --record")
		}

		return nil, false, nil
	}

	recorder, err := datarecording.New(path)
	if err != nil {
		return nil, false, err
	}

	slog.Info("recording results", "database", path+".sqlite3")

	return recorder, traceAccesses, nil
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", "classic",
		"Output format: classic or table.")
}

func printResults(
	cmd *cobra.Command,
	w io.Writer,
	results []experiment.Result,
) error {
	format, _ := cmd.Flags().GetString("format")

	switch format {
	case "classic":
		return experiment.WriteClassic(w, results)
	case "table":
		return experiment.WriteTable(w, results)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// runExperiment builds a runner from the common flags and runs the configs.
// The returned function closes the recorder, if any. Callers must call it
// once the caches are no longer used, since recording hooks stay attached to
// them.
func runExperiment(
	cmd *cobra.Command,
	configs []experiment.Config,
	runner experiment.Runner,
) ([]experiment.Result, func(), error) {
	done := func() {}

	policy, err := policyOption(cmd)
	if err != nil {
		return nil, done, err
	}

	addrs, err := traceOption(cmd)
	if err != nil {
		return nil, done, err
	}

	recorder, traceAccesses, err := recorderOption(cmd)
	if err != nil {
		return nil, done, err
	}

	runner = runner.
		WithRecencyPolicy(policy).
		WithLogger(slog.Default())

	if recorder != nil {
		done = func() {
			if err := recorder.Close(); err != nil {
				slog.Error("closing recorder", "error", err)
			}
		}

		runner = runner.WithRecorder(recorder, traceAccesses)
		slog.Info("run started", "run_id", runner.RunID())
	}

	results, err := runner.Run(configs, addrs)

	return results, done, err
}
