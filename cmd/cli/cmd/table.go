// Package cmd - table command
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"irs-mortality/adapters/tablefile"
	"irs-mortality/core/engine"
	"irs-mortality/core/output"
	"irs-mortality/internal/config"
	"irs-mortality/internal/logging"
)

var (
	calcYear     int
	tableKind    string
	outputFormat string
	dataDir      string
	noColor      bool
)

// tableCmd represents the table command
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the mortality tables for a calculation year",
	Long: `Print the 430, 430 static and 417e tables for one calculation year.

Examples:
  irs-mortality table --year 2030
  irs-mortality table --year 2030 --kind 430-static
  irs-mortality table --year 2019 --format json --data ./Data`,
	RunE: runTable,
}

func init() {
	tableCmd.Flags().IntVarP(&calcYear, "year", "y", 0, "calculation year (2009-2099)")
	tableCmd.Flags().StringVarP(&tableKind, "kind", "k", "all", "tables to print (all, 430, 430-static, 417e)")
	tableCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, csv, markdown); default from config")
	tableCmd.Flags().StringVarP(&dataDir, "data", "d", "", "data directory; default from config")
	tableCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	_ = tableCmd.MarkFlagRequired("year")
}

func runTable(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	kind, err := output.ParseKind(tableKind)
	if err != nil {
		return err
	}
	formatName := outputFormat
	if formatName == "" {
		formatName = cfg.Output.DefaultFormat
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	e, err := newEngine(cfg, calcYear)
	if err != nil {
		return err
	}
	full, err := e.FullTable()
	if err != nil {
		return err
	}

	status := newUI(cmd.ErrOrStderr(), cfg)
	status.Info("%d tables are %s (base year %d)", full.CalcYear, full.Source, e.Tables().BaseYear())
	status.Debug("fingerprint %s, %d decimal places", full.Fingerprint, full.FinalPrecision)

	registry := output.DefaultRegistry(noColor || cfg.Output.NoColor)
	return registry.Render(cmd.OutOrStdout(), format, output.NewReport(full, kind))
}

// newEngine loads the configured data set and creates an engine for year
func newEngine(cfg *config.Config, year int) (*engine.Engine, error) {
	dir := cfg.Data.Directory
	if dataDir != "" {
		dir = dataDir
	}

	tables, err := tablefile.Load(dir, cfg.Data.Layout, cfg.Calculation.FinalPrecision)
	if err != nil {
		return nil, err
	}
	logging.Debug("data set ready", zap.String("dir", dir), zap.Stringer("fingerprint", tables.Fingerprint()))
	return engine.New(tables, year)
}
