// Package cmd - config command
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"irs-mortality/internal/config"
)

var savePath string

// configCmd shows or saves the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration after the config file and environment
overrides are applied. With --save, write it to a file instead; the file
extension selects JSON or YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if savePath != "" {
			if err := cfg.Save(savePath); err != nil {
				return err
			}
			newUI(cmd.OutOrStdout(), cfg).Success("configuration saved to %s", savePath)
			return nil
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	configCmd.Flags().StringVar(&savePath, "save", "", "write the configuration to this path")
}
