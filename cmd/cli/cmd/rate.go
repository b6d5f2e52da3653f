// Package cmd - rate command
package cmd

import (
	"github.com/spf13/cobra"

	"irs-mortality/core/types"
	"irs-mortality/internal/config"
)

var (
	rateCategory string
	rateAge      int
)

// rateCmd represents the rate command
var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Print a single 430 rate",
	Long: `Print the 430 rate for one category and age in a calculation year.

Examples:
  irs-mortality rate --year 2040 --category "Male EE" --age 65
  irs-mortality rate -y 2024 -c female-ha -a 90`,
	RunE: runRate,
}

func init() {
	rateCmd.Flags().IntVarP(&calcYear, "year", "y", 0, "calculation year (2009-2099)")
	rateCmd.Flags().StringVarP(&rateCategory, "category", "c", "", `category ("Male EE", "Male HA", "Female EE", "Female HA")`)
	rateCmd.Flags().IntVarP(&rateAge, "age", "a", 0, "age (15-120)")
	rateCmd.Flags().StringVarP(&dataDir, "data", "d", "", "data directory; default from config")
	_ = rateCmd.MarkFlagRequired("year")
	_ = rateCmd.MarkFlagRequired("category")
	_ = rateCmd.MarkFlagRequired("age")
}

func runRate(cmd *cobra.Command, args []string) error {
	category, err := types.ParseCategory(rateCategory)
	if err != nil {
		return err
	}

	e, err := newEngine(config.Get(), calcYear)
	if err != nil {
		return err
	}
	rate, err := e.Rate430(category, rateAge)
	if err != nil {
		return err
	}

	out := newUI(cmd.OutOrStdout(), config.Get())
	if verbose {
		out.Print("%s age %d in %d (%s): ", category, rateAge, e.CalcYear(), e.Source())
	}
	out.Println("%s", rate.String())
	return nil
}
