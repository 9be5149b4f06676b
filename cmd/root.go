package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel         string  // Log verbosity level
	defaultsFilePath string  // Path to defaults.yaml
	cutoffRate       float64 // Rate at or below which the fit window ends
	maxIterations    int     // Solver iteration ceiling
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "kinfit",
	Short: "Michaelis-Menten parameter estimation for enzyme time courses",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig loads defaults.yaml and applies flags the user set explicitly.
// A missing defaults file is tolerated only when --defaults was not given.
func resolveConfig(cmd *cobra.Command) Config {
	cfg, err := loadDefaultsConfig(defaultsFilePath)
	if err != nil {
		if !cmd.Flags().Changed("defaults") && errors.Is(err, fs.ErrNotExist) {
			logrus.Debugf("no %s found, using built-in defaults", defaultsFilePath)
			cfg = builtinConfig()
		} else {
			logrus.Fatalf("Failed to load defaults: %v", err)
		}
	}
	if cmd.Flags().Changed("cutoff") {
		cfg.Fit.CutoffRate = cutoffRate
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.Fit.MaxIterations = maxIterations
	}
	if err := cfg.Fit.validate(); err != nil {
		logrus.Fatalf("Invalid fit settings: %v", err)
	}
	return cfg
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&defaultsFilePath, "defaults", "defaults.yaml", "Path to defaults.yaml")
	rootCmd.PersistentFlags().Float64Var(&cutoffRate, "cutoff", 0.02, "Rate at or below which the fit window ends")
	rootCmd.PersistentFlags().IntVar(&maxIterations, "max-iterations", 200, "Solver iteration ceiling")

	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(trialCmd)
	rootCmd.AddCommand(zeroCmd)
}
