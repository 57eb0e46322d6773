package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"patchmedic/internal/config"
	"patchmedic/internal/engine"
	"patchmedic/internal/flags"
	gh "patchmedic/internal/github"
	"patchmedic/internal/output"
	"patchmedic/internal/patch"
	"patchmedic/internal/rules"
	"patchmedic/internal/worktree"
)

var checkSelector []string

var checkCmd = &cobra.Command{
	Use:   "check PATCH",
	Short: "Validate a patch file",
	Long: `Validate one git format-patch file.

The patch header must contain, in order, the "From <commit> <date>" line and
the From:, Date: and Subject: fields, followed by the message and the "---"
line that starts the diff. A patch without that header is rejected before any
check runs.

Working tree:
  The "apply patch" check applies the diff with git apply. The tree is
  --path if it is an existing checkout; otherwise --url is cloned into --path,
  or into a temporary directory that is removed afterwards. github.com URLs
  are resolved through the GitHub API (token from GITHUB_TOKEN or gh auth
  token) to find the clone URL and default branch. With --no-apply nothing is
  fetched and "apply patch" fails.

Output:
  One line per check, in check order:
    ✅ <check>                            passed
    ❌ <check>: <error> (<detail>)        failed at level Error
    ⚠️ <check>: <error> (<detail>)        failed at level Warning
    🙈 <check>: <error> (<detail>)        failed at level Skip
  --report also writes a Markdown table.

Exit codes:
  0 = no check failed at level Error
  1 = at least one check failed at level Error
  3 = fatal error (config, patch header, or working tree; checks did not run)

Examples:
  patchmedic check 0001-fix.patch --url github.com/octo/demo
  patchmedic check 0001-fix.patch --path . --config patchmedic.yaml
  patchmedic check 0001-fix.patch --no-apply --checks summary,"valid author"
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg.Checks.Selector = strings.Join(config.SplitCommaList(checkSelector), ",")
		code := runCheck(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], configPath, cfg)
		if code != engine.ExitOK {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Target
	checkCmd.Flags().StringVar(&cfg.Target.URL, flags.FlagURL, "", "Repository to apply the patch to (git URL or github.com/OWNER/REPO)")
	checkCmd.Flags().StringVar(&cfg.Target.Path, flags.FlagPath, "", "Working tree: an existing checkout, or where to clone --url (default: temporary directory)")
	checkCmd.Flags().StringVar(&cfg.Target.Ref, flags.FlagRef, "", "Branch or tag to clone (default: the repository's default branch)")
	checkCmd.Flags().StringVar(&cfg.Target.GitHubAPIURL, flags.FlagGitHubAPIURL, "", "GitHub REST API endpoint used to resolve github.com targets (default: https://api.github.com/)")
	checkCmd.Flags().BoolVar(&cfg.Target.NoApply, flags.FlagNoApply, false, "Do not fetch a working tree; the apply patch check fails")

	// Checks
	checkCmd.Flags().StringSliceVar(&checkSelector, flags.FlagChecks, nil, "Checks to run by ID (repeatable; comma-separated accepted; default: all)")

	// Output
	checkCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	checkCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --report)")

	// Runtime
	checkCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Checks evaluated at once; output order is unaffected")
	checkCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Timeout for the whole run, including the clone")
}

// runCheck is the check command without the process exit, so it can be driven
// from tests. It returns the exit code.
func runCheck(ctx context.Context, stdout, stderr io.Writer, patchPath, cfgPath string, cfg *config.Config) int {
	fatal := func(format string, args ...any) int {
		fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
		return engine.ExitFatal
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := loadConfig(cfg, cfgPath); err != nil {
		return fatal("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return fatal("%v", err)
	}
	if err := engine.ValidateLevels(cfg); err != nil {
		return fatal("%v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	p, err := patch.Load(patchPath)
	if err != nil {
		return fatal("%v", err)
	}

	var tree rules.Applier
	if !cfg.Target.NoApply {
		t, cleanup, err := prepareTree(ctx, cfg)
		if err != nil {
			return fatal("prepare working tree: %v", err)
		}
		defer cleanup()
		tree = t
	}

	out, err := newOutputManager(stdout, cfg)
	if err != nil {
		return fatal("create output sinks: %v", err)
	}

	results, err := engine.NewEngine(out).Run(ctx, p, cfg, tree)
	if cerr := out.Close(); cerr != nil {
		slog.Warn("closing output sinks failed", "err", cerr)
	}
	if err != nil {
		return fatal("%v", err)
	}
	return engine.ExitCode(results, cfg)
}

func newOutputManager(stdout io.Writer, cfg *config.Config) (*output.Manager, error) {
	out, err := output.NewManager()
	if err != nil {
		return nil, err
	}
	if !cfg.Output.NoConsole {
		if err := out.AddSink(output.NewConsoleSink(stdout, cfg)); err != nil {
			return nil, err
		}
	}
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report, cfg)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		if err := out.AddSink(rs); err != nil {
			_ = rs.Close()
			_ = out.Close()
			return nil, err
		}
	}
	return out, nil
}

// prepareTree resolves github.com targets through the API and hands the rest
// to worktree.Prepare.
func prepareTree(ctx context.Context, cfg *config.Config) (*worktree.Tree, func(), error) {
	url, ref := cfg.Target.URL, cfg.Target.Ref
	if owner, repo, ok := gh.ParseRepoURL(url); ok {
		opts := []gh.Option{gh.WithVerbose(cfg.Runtime.Verbose)}
		if cfg.Target.GitHubAPIURL != "" {
			opts = append(opts, gh.WithBaseURL(cfg.Target.GitHubAPIURL))
		}
		url, ref = resolveGitHubTarget(ctx, owner, repo, ref, opts...)
	}
	return worktree.Prepare(ctx, url, cfg.Target.Path, ref)
}

// resolveGitHubTarget falls back to the conventional clone URL when the API
// cannot be reached; git then reports the real problem, if any.
func resolveGitHubTarget(ctx context.Context, owner, repo, ref string, opts ...gh.Option) (string, string) {
	fallback := fmt.Sprintf("https://github.com/%s/%s.git", owner, repo)

	token, source, err := gh.ResolveToken(ctx)
	if err != nil {
		slog.Warn("github token lookup failed", "err", err)
	}
	slog.Debug("github token", "source", source, "present", token != "")

	client, err := gh.NewClient(ctx, token, opts...)
	if err != nil {
		slog.Warn("github client unavailable", "err", err)
		return fallback, ref
	}
	target, err := gh.ResolveCloneTarget(ctx, client, owner, repo)
	if err != nil {
		slog.Warn("github lookup failed; cloning the conventional URL", "repo", owner+"/"+repo, "err", err)
		return fallback, ref
	}
	if ref == "" {
		ref = target.DefaultBranch
	}
	return target.CloneURL, ref
}
