// Package cmd provides the command-line interface of cachesim.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/mem/cache"
)

// Environment variables that provide flag defaults. They may also be set in a
// .env file in the working directory.
const (
	envLineSize    = "CACHESIM_LINE_SIZE"
	envSets        = "CACHESIM_SETS"
	envWays        = "CACHESIM_WAYS"
	envTrace       = "CACHESIM_TRACE"
	envPolicy      = "CACHESIM_POLICY"
	envLogLevel    = "CACHESIM_LOG_LEVEL"
	envMonitorPort = "CACHESIM_MONITOR_PORT"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim simulates set-associative caches with true LRU replacement.",
	Long: `cachesim feeds 16-bit address traces to set-associative caches and ` +
		`reports hits and misses. Caches can be run once, compared on the ` +
		`classic demonstration trace, or served for inspection in a browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
}

func init() {
	cobra.OnInitialize(loadDotEnv)

	rootCmd.PersistentFlags().String("log-level", "warn",
		"Log level: debug, info, warn, or error. Env: "+envLogLevel+".")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Ignoring .env file: %s\n", err)
	}
}

func setupLogging(cmd *cobra.Command) error {
	levelName, err := stringOption(cmd, "log-level", envLogLevel)
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("invalid log level %q", levelName)
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(),
		&slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	return nil
}

// stringOption returns the flag value if it is given on the command line,
// the environment variable if it is set, and the flag default otherwise.
func stringOption(cmd *cobra.Command, name, envKey string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", err
	}

	if cmd.Flags().Changed(name) {
		return value, nil
	}

	if envValue, ok := os.LookupEnv(envKey); ok {
		return strings.TrimSpace(envValue), nil
	}

	return value, nil
}

func intOption(cmd *cobra.Command, name, envKey string) (int, error) {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, err
	}

	if cmd.Flags().Changed(name) {
		return value, nil
	}

	envValue, ok := os.LookupEnv(envKey)
	if !ok {
		return value, nil
	}

	value, err = strconv.Atoi(strings.TrimSpace(envValue))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", envKey, err)
	}

	return value, nil
}

func addGeometryFlags(cmd *cobra.Command) {
	cmd.Flags().Int("line-size", 16,
		"Bytes per cache line. Env: "+envLineSize+".")
	cmd.Flags().Int("sets", 8,
		"Number of sets. Env: "+envSets+".")
	cmd.Flags().Int("ways", 1,
		"Number of ways per set. Env: "+envWays+".")
}

func geometryOption(cmd *cobra.Command) (cache.Geometry, error) {
	g := cache.Geometry{}

	var err error

	if g.LineSize, err = intOption(cmd, "line-size", envLineSize); err != nil {
		return g, err
	}

	if g.SetCount, err = intOption(cmd, "sets", envSets); err != nil {
		return g, err
	}

	if g.Associativity, err = intOption(cmd, "ways", envWays); err != nil {
		return g, err
	}

	return g, g.Validate()
}

// geometryGiven tells if the user picked a geometry, on the command line or
// through the environment.
func geometryGiven(cmd *cobra.Command) bool {
	flags := []struct{ name, env string }{
		{"line-size", envLineSize},
		{"sets", envSets},
		{"ways", envWays},
	}

	for _, f := range flags {
		if cmd.Flags().Changed(f.name) {
			return true
		}

		if _, ok := os.LookupEnv(f.env); ok {
			return true
		}
	}

	return false
}

func addPolicyFlag(cmd *cobra.Command) {
	cmd.Flags().String("policy", "access",
		"When LRU state is updated: access (hits and installs) or hit-only. "+
			"Env: "+envPolicy+".")
}

func policyOption(cmd *cobra.Command) (cache.RecencyPolicy, error) {
	name, err := stringOption(cmd, "policy", envPolicy)
	if err != nil {
		return cache.TouchOnAccess, err
	}

	return cache.ParseRecencyPolicy(name)
}
