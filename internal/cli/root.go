package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"patchmedic/internal/config"
	"patchmedic/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var (
	cfg        = config.New()
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "patchmedic",
	Short: "Validate git format-patch files before they are merged",
	Long: `patchmedic validates a contribution patch produced by git format-patch.

It parses the mail header, checks that the diff applies cleanly to the target
repository, and runs a fixed set of lint checks. Each check has a severity
(Error, Warning or Skip) set in the config file; only Error failures fail the
run. The patch itself is never modified.

Examples:
	# Check a patch against a remote repository
	patchmedic check 0001-fix-typo.patch --url github.com/octo/demo

	# Check against an existing checkout
	patchmedic check 0001-fix-typo.patch --path ~/src/demo

	# List checks
	patchmedic checks list

	# Print the effective configuration
	patchmedic config print --config patchmedic.yaml`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd.ErrOrStderr(), cfg.Runtime.Verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable debug logging on stderr (git invocations, GitHub API calls, per-check timing)")
	rootCmd.PersistentFlags().StringVar(&configPath, flags.FlagConfig, "", "YAML config file with check levels and the author deny-list")
}

// configureLogging routes slog to w: debug records with --verbose, warnings
// and errors otherwise.
func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig overlays the --config file, if any, on into and compiles the
// author deny-list.
func loadConfig(into *config.Config, path string) error {
	if path == "" {
		return nil
	}
	if err := into.LoadFile(path); err != nil {
		return err
	}
	return into.InvalidAuthors.Compile()
}

// fileConfig is the configuration of the --config file alone, for commands
// that take no run flags.
func fileConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.New(), nil
	}
	return config.Load(path)
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
