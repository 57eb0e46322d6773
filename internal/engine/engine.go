// Package engine runs the selected checks over one patch and decides the
// exit status of a run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"patchmedic/internal/config"
	"patchmedic/internal/output"
	"patchmedic/internal/patch"
	"patchmedic/internal/rules"
)

// Exit code contract:
//
//	0 = every check passed, or only failed at Warning or Skip level
//	1 = at least one check failed at Error level
//	3 = fatal error (the checks did not run)
const (
	ExitOK       = 0
	ExitFailures = 1
	ExitFatal    = 3
)

type Engine struct {
	// Out receives a run.started event, every result in check order, and a
	// run.finished event. It may be nil.
	Out *output.Manager
}

func NewEngine(out *output.Manager) *Engine {
	return &Engine{Out: out}
}

// Run evaluates the checks selected by cfg.Checks.Selector against p. Every
// selected check runs, whatever the others report. The returned results are
// in registration order. An error means the run could not start.
func (e *Engine) Run(ctx context.Context, p *patch.Patch, cfg *config.Config, tree rules.Applier) ([]rules.Result, error) {
	if p == nil {
		return nil, errors.New("patch is nil")
	}
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := ValidateLevels(cfg); err != nil {
		return nil, err
	}
	selected, err := rules.Resolve(cfg.Checks.Selector)
	if err != nil {
		return nil, fmt.Errorf("resolve checks: %w", err)
	}

	logPatch(p)
	e.write(output.Event{Type: output.EventRunStarted, Patch: p.Path, Checks: len(selected)})

	env := &rules.Env{Patch: p, Config: cfg, Tree: tree}
	results := runChecks(ctx, selected, env, cfg.Runtime.Concurrency)

	for _, r := range results {
		e.write(r)
	}
	e.write(output.Event{Type: output.EventRunFinished, ExitCode: ExitCode(results, cfg)})
	return results, nil
}

func (e *Engine) write(v any) {
	if e == nil || e.Out == nil {
		return
	}
	if err := e.Out.Write(v); err != nil {
		slog.Warn("output sink failed", "err", err)
	}
}

// runChecks evaluates checks with at most limit running at once. Each result
// lands in the slot of its check, so the order never depends on scheduling.
func runChecks(ctx context.Context, checks []rules.Check, env *rules.Env, limit int) []rules.Result {
	if limit < 1 {
		limit = 1
	}
	results := make([]rules.Result, len(checks))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, c := range checks {
		g.Go(func() error {
			results[i] = evaluate(ctx, c, env)
			return nil
		})
	}
	// Check failures are results, not errors.
	_ = g.Wait()

	return results
}

func evaluate(ctx context.Context, c rules.Check, env *rules.Env) (res rules.Result) {
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			slog.Error("check panicked", "check", c.ID(), "panic", v)
			res = rules.FailResult(c.ID(), &rules.PanicError{Value: v})
		}
		slog.Debug("check finished", "check", c.ID(), "status", res.Status, "took", time.Since(start).Truncate(time.Microsecond))
	}()

	res = c.Evaluate(ctx, env)

	// The engine knows which check ran; stamp it so checks need not.
	if res.CheckID == "" {
		res.CheckID = c.ID()
	}
	if res.Status == "" {
		res = rules.ResultFromError(res.CheckID, res.Err)
	}
	return res
}

// ExitCode is ExitFailures when any failed result has effective level
// Error, ExitOK otherwise. Warning and Skip failures never change it.
func ExitCode(results []rules.Result, cfg *config.Config) int {
	for _, r := range results {
		if !r.Passed() && cfg.LevelFor(r.CheckID) == config.LevelError {
			return ExitFailures
		}
	}
	return ExitOK
}

// ValidateLevels rejects severity entries for checks that are not
// registered.
func ValidateLevels(cfg *config.Config) error {
	var unknown []string
	for id := range cfg.Levels {
		if _, ok := rules.Lookup(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown check ID %q in levels (known: %v)", unknown[0], rules.IDs())
}

func logPatch(p *patch.Patch) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	slog.Debug("patch header", "path", p.Path, "author", p.Header.Author, "subject", p.Header.Subject, "signatures", len(p.Header.Signatures))
	files, err := p.Files()
	if err != nil {
		slog.Debug("diff payload not parsed", "err", err)
		return
	}
	for _, f := range files {
		slog.Debug("diff file", "name", f.Name, "added", f.Added, "changed", f.Changed, "deleted", f.Deleted)
	}
}
