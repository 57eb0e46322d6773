// Package flags defines canonical CLI flag names shared by the commands and
// the code that reports on them. Names carry no leading dashes:
//
//	cmd.Flags().StringVar(&cfg.Target.URL, flags.FlagURL, "", "...")
//	arg := "--" + flags.FlagURL
package flags

const (
	// Target
	FlagURL          = "url"
	FlagPath         = "path"
	FlagRef          = "ref"
	FlagGitHubAPIURL = "github-api-url"
	FlagNoApply      = "no-apply"

	// Checks
	FlagConfig = "config"
	FlagChecks = "checks"

	// Output
	FlagReport    = "report"
	FlagNoConsole = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagVerbose     = "verbose"
)
