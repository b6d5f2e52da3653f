// Package cmd provides the CLI commands for irs-mortality.
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"irs-mortality/core/ui"
	"irs-mortality/internal/config"
	"irs-mortality/internal/logging"
)

// Version is the CLI version
const Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "irs-mortality",
	Short: "IRS 430, 430 static and 417e mortality tables",
	Long: `irs-mortality produces IRS mortality tables for pension calculations.

Years 2009-2024 are served from the published IRS tables. Later years up
to 2099 are projected from the base table with the improvement scale.

Examples:
  irs-mortality table --year 2030
  irs-mortality table --year 2024 --kind 417e --format csv
  irs-mortality rate --year 2040 --category "Male EE" --age 65`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	stderr := newUI(rootCmd.ErrOrStderr(), config.Get())
	cfg := config.Get()
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			stderr.Warning("config file %s not found, using defaults", cfgFile)
		}
		loaded, err := config.Load(cfgFile)
		if err != nil {
			stderr.Error("loading config: %v", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		stderr.Error("applying environment: %v", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		stderr.Error("initializing logging: %v", err)
	}
}

// newUI returns a terminal writer that is quiet unless --verbose is set
func newUI(w io.Writer, cfg *config.Config) *ui.Writer {
	out := ui.NewWriter(w, noColor || cfg.Output.NoColor)
	if verbose {
		out.SetVerbosity(2)
	} else {
		out.SetVerbosity(0)
	}
	return out
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		newUI(cmd.OutOrStdout(), config.Get()).Println("irs-mortality version %s", Version)
	},
}
