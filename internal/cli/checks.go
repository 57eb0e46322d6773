package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"patchmedic/internal/config"
	"patchmedic/internal/rules"
)

var checksListQuiet bool

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List and describe checks",
	Long: `List the checks in this build and what each one verifies.

Checks run in the order listed here, and the console report keeps that order.

Examples:
  patchmedic checks list
  patchmedic checks show "valid author"
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var checksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available checks",
	Long: `List every registered check in run order, with its level under the
current configuration (--config).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := fileConfig(configPath)
		if err != nil {
			return err
		}
		for _, r := range rules.List() {
			if checksListQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), r.ID())
				continue
			}
			printCheck(cmd.OutOrStdout(), r, c.LevelFor(r.ID()))
		}
		return nil
	},
}

var checksShowCmd = &cobra.Command{
	Use:   "show CHECK-ID",
	Short: "Show details of a specific check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, ok := rules.Lookup(args[0])
		if !ok {
			return fmt.Errorf("check not found: %s", args[0])
		}
		c, err := fileConfig(configPath)
		if err != nil {
			return err
		}
		printCheck(cmd.OutOrStdout(), r, c.LevelFor(r.ID()))
		return nil
	},
}

func printCheck(w io.Writer, r rules.Check, level config.Level) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "CHECK: %s\n", r.ID())
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, r.Title())
	fmt.Fprintln(w, r.Description())
	fmt.Fprintf(w, "Level: %s\n\n", level)
}

func init() {
	rootCmd.AddCommand(checksCmd)
	checksCmd.AddCommand(checksListCmd)
	checksListCmd.Flags().BoolVarP(&checksListQuiet, "quiet", "q", false, "Only print check IDs")
	checksCmd.AddCommand(checksShowCmd)
}
