package cli

import (
	"github.com/spf13/cobra"

	"patchmedic/internal/engine"
	"patchmedic/internal/rules"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration a check run would use, as YAML.

Without --config this is the default configuration. Every registered check is
listed under levels at its effective level, so the output is a complete
starting point for a config file:

  patchmedic config print > patchmedic.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := fileConfig(configPath)
		if err != nil {
			return err
		}
		if err := engine.ValidateLevels(c); err != nil {
			return err
		}
		b, err := c.WithEffectiveLevels(rules.IDs()).Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPrintCmd)
}
