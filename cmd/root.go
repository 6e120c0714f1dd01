package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"studiosim/internal/config"

	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagScenarios string
	flagTrials    int
	flagMonths    int
	flagSeed      int64
	flagQuiet     bool
	flagDB        string
)

var rootCmd = &cobra.Command{
	Use:   "studiosim",
	Short: "Ceramics studio financial simulator",
	Long:  "Monte Carlo simulation of studio membership, revenue, debt service, and cash runway.",
	RunE:  runRun,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	homeDir, _ := os.UserHomeDir()
	defaultDB := filepath.Join(homeDir, ".studiosim", "results.db")

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "TOML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&flagScenarios, "scenarios", "", "YAML scenario preset file")
	rootCmd.PersistentFlags().IntVarP(&flagTrials, "trials", "n", 0, "Override trial count")
	rootCmd.PersistentFlags().IntVarP(&flagMonths, "months", "m", 0, "Override horizon in months")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", -1, "Override RNG seed")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVarP(&flagDB, "db", "d", defaultDB, "Results database path")
}

// loadConfig is the shared config loading path used by all commands.
// Flag overrides win over file values.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(flagConfig)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}

	if flagScenarios != "" {
		scenarios, err := config.LoadScenariosYAML(flagScenarios)
		if err != nil {
			return cfg, fmt.Errorf("loading scenarios: %w", err)
		}
		cfg.Scenarios = scenarios
	}

	if flagTrials > 0 {
		cfg.Sim.Trials = flagTrials
	}
	if flagMonths > 0 {
		cfg.Sim.Months = flagMonths
	}
	if flagSeed >= 0 {
		cfg.Sim.Seed = flagSeed
	}
	return cfg, nil
}

func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
