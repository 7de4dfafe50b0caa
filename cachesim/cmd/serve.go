package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/experiment"
	"github.com/sarchlab/cachesim/monitoring"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inspect caches in a browser.",
	Long: "`serve` warms up caches with a trace and serves them over HTTP " +
		"until interrupted. The four classic caches are served unless a " +
		"geometry or a --configs file is given.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		configs, err := configsOption(cmd)
		if err != nil {
			return err
		}

		switch {
		case configs != nil:
		case geometryGiven(cmd):
			g, err := geometryOption(cmd)
			if err != nil {
				return err
			}

			configs = []experiment.Config{experiment.Custom(g)}
		default:
			configs = experiment.Canonical()
		}

		port, err := intOption(cmd, "port", envMonitorPort)
		if err != nil {
			return err
		}

		// Served caches keep recording, so the recorder is closed only after
		// the monitor has shut down.
		results, done, err := runExperiment(cmd, configs, experiment.MakeRunner())
		defer done()

		if err != nil {
			return err
		}

		monitor := monitoring.NewMonitor().WithPortNumber(port)
		for _, r := range results {
			monitor.RegisterCache(r.Cache)
		}

		url, err := monitor.StartServer()
		if err != nil {
			return err
		}

		if open, _ := cmd.Flags().GetBool("open"); open {
			if err := browser.OpenURL(url); err != nil {
				slog.Warn("cannot open browser", "url", url, "error", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()

		slog.Info("shutting down monitor")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout)
		defer cancel()

		return monitor.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addConfigsFlag(serveCmd)
	addGeometryFlags(serveCmd)
	addPolicyFlag(serveCmd)
	addTraceFlag(serveCmd)
	addRecordFlags(serveCmd)

	serveCmd.Flags().Int("port", 0,
		"Port to serve on. A random port is used if 0. Env: "+envMonitorPort+".")
	serveCmd.Flags().Bool("open", false, "Open the monitor in a browser.")
}
