package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"patchmedic/internal/config"
	"patchmedic/internal/output"
	"patchmedic/internal/patch"
	"patchmedic/internal/rules"
	_ "patchmedic/internal/rules/checks"
)

type stubCheck struct {
	id     string
	delay  time.Duration
	err    error
	panics bool
	calls  atomic.Int32

	running *atomic.Int32
	peak    *atomic.Int32
}

func (c *stubCheck) ID() string          { return c.id }
func (c *stubCheck) Title() string       { return "Stub " + c.id }
func (c *stubCheck) Description() string { return "Test-only check" }
func (c *stubCheck) Evaluate(ctx context.Context, env *rules.Env) rules.Result {
	c.calls.Add(1)
	if c.running != nil {
		n := c.running.Add(1)
		defer c.running.Add(-1)
		for {
			p := c.peak.Load()
			if n <= p || c.peak.CompareAndSwap(p, n) {
				break
			}
		}
	}
	time.Sleep(c.delay)
	if c.panics {
		panic("boom")
	}
	// CheckID left empty on purpose: the engine stamps it.
	if c.err != nil {
		return rules.Result{Status: rules.StatusFail, Err: c.err}
	}
	return rules.Result{Status: rules.StatusPass}
}

type recordingSink struct {
	records []any
}

func (s *recordingSink) Write(v any) error { s.records = append(s.records, v); return nil }
func (s *recordingSink) Close() error      { return nil }

type okTree struct{ applied int }

func (t *okTree) Apply(ctx context.Context, diff []byte) error {
	t.applied++
	return nil
}

func loadPatch(t *testing.T, name string) *patch.Patch {
	t.Helper()
	p, err := patch.Load(filepath.Join("..", "patch", "testdata", name))
	if err != nil {
		t.Fatalf("Load(%s): %v", name, err)
	}
	return p
}

func TestRunChecks_PreservesOrderUnderConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	var checks []rules.Check
	for i := 0; i < 6; i++ {
		checks = append(checks, &stubCheck{
			id:      fmt.Sprintf("c%d", i),
			delay:   time.Duration(6-i) * 5 * time.Millisecond,
			running: &running,
			peak:    &peak,
		})
	}

	results := runChecks(context.Background(), checks, &rules.Env{}, 3)

	if len(results) != len(checks) {
		t.Fatalf("got %d results, want %d", len(results), len(checks))
	}
	for i, r := range results {
		if r.CheckID != checks[i].ID() {
			t.Fatalf("slot %d holds %q, want %q", i, r.CheckID, checks[i].ID())
		}
	}
	if p := peak.Load(); p > 3 {
		t.Fatalf("concurrency limit exceeded: peak %d", p)
	}
}

func TestRunChecks_SequentialByDefault(t *testing.T) {
	var running, peak atomic.Int32
	checks := []rules.Check{
		&stubCheck{id: "a", delay: time.Millisecond, running: &running, peak: &peak},
		&stubCheck{id: "b", delay: time.Millisecond, running: &running, peak: &peak},
	}
	runChecks(context.Background(), checks, &rules.Env{}, 0)
	if p := peak.Load(); p != 1 {
		t.Fatalf("want sequential evaluation, peak %d", p)
	}
}

func TestRunChecks_NoShortCircuit(t *testing.T) {
	first := &stubCheck{id: "first", err: errors.New("nope")}
	second := &stubCheck{id: "second"}

	results := runChecks(context.Background(), []rules.Check{first, second}, &rules.Env{}, 1)

	if second.calls.Load() != 1 {
		t.Fatal("a failing check must not stop later checks")
	}
	if results[0].Passed() || !results[1].Passed() {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRunChecks_RecoversPanics(t *testing.T) {
	checks := []rules.Check{&stubCheck{id: "bad", panics: true}, &stubCheck{id: "good"}}

	results := runChecks(context.Background(), checks, &rules.Env{}, 1)

	var pe *rules.PanicError
	if !errors.As(results[0].Err, &pe) || results[0].CheckID != "bad" {
		t.Fatalf("expected PanicError for bad, got %+v", results[0])
	}
	if pe.Detail() != "boom" {
		t.Fatalf("detail = %q", pe.Detail())
	}
	if !results[1].Passed() {
		t.Fatal("a panicking check must not abort the run")
	}
}

func TestExitCode(t *testing.T) {
	fail := func(id string) rules.Result { return rules.FailResult(id, errors.New("x")) }

	cfg := config.New()
	cfg.Levels["summary"] = config.LevelWarning
	cfg.Levels["signed off"] = config.LevelSkip

	tests := []struct {
		name    string
		results []rules.Result
		want    int
	}{
		{"all pass", []rules.Result{rules.PassResult("summary"), rules.PassResult("apply patch")}, ExitOK},
		{"warning only", []rules.Result{fail("summary")}, ExitOK},
		{"skip only", []rules.Result{fail("signed off")}, ExitOK},
		{"default level is error", []rules.Result{fail("summary"), fail("valid author")}, ExitFailures},
		{"no results", nil, ExitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.results, cfg); got != tt.want {
				t.Fatalf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateLevels(t *testing.T) {
	cfg := config.New()
	cfg.Levels["summary"] = config.LevelWarning
	if err := ValidateLevels(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Levels["sumary"] = config.LevelSkip
	err := ValidateLevels(cfg)
	if err == nil || !strings.Contains(err.Error(), `unknown check ID "sumary"`) {
		t.Fatalf("expected unknown check error, got %v", err)
	}
}

func TestEngine_Run_EmptySummaryScenario(t *testing.T) {
	p := loadPatch(t, "empty_summary.patch")
	cfg := config.New()
	cfg.InvalidAuthors.RegularExpressions = []string{"example"}
	if err := cfg.InvalidAuthors.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	sink := &recordingSink{}
	out, err := output.NewManager(sink)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	tree := &okTree{}

	results, err := NewEngine(out).Run(context.Background(), p, cfg, tree)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	byID := map[string]rules.Result{}
	var order []string
	for _, r := range results {
		byID[r.CheckID] = r
		order = append(order, r.CheckID)
	}
	if got := strings.Join(order, ","); got != "summary,apply patch,valid author,signed off,diff format" {
		t.Fatalf("order = %s", got)
	}

	var mf *rules.MissingFieldError
	if !errors.As(byID["summary"].Err, &mf) || mf.Field != "summary" {
		t.Fatalf("summary: expected MissingFieldError, got %v", byID["summary"].Err)
	}
	if !byID["apply patch"].Passed() || tree.applied != 1 {
		t.Fatalf("apply patch: expected one successful apply, got %+v", byID["apply patch"])
	}
	var de *rules.AuthorDenylistError
	if !errors.As(byID["valid author"].Err, &de) || len(de.Matches) != 1 || de.Matches[0] != "example" {
		t.Fatalf("valid author: expected match on example, got %v", byID["valid author"].Err)
	}
	if !byID["signed off"].Passed() || !byID["diff format"].Passed() {
		t.Fatalf("unexpected failures: %+v", results)
	}
	if ExitCode(results, cfg) != ExitFailures {
		t.Fatal("default Error level must fail the run")
	}

	// run.started, five results, run.finished.
	if len(sink.records) != 7 {
		t.Fatalf("sink got %d records, want 7", len(sink.records))
	}
	start, ok := sink.records[0].(output.Event)
	if !ok || start.Type != output.EventRunStarted || start.Checks != 5 {
		t.Fatalf("first record = %+v", sink.records[0])
	}
	end, ok := sink.records[6].(output.Event)
	if !ok || end.Type != output.EventRunFinished || end.ExitCode != ExitFailures {
		t.Fatalf("last record = %+v", sink.records[6])
	}
}

func TestEngine_Run_Idempotent(t *testing.T) {
	p := loadPatch(t, "basic.patch")
	cfg := config.New()
	cfg.Checks.Selector = "summary,valid author,signed off"

	eng := NewEngine(nil)
	first, err := eng.Run(context.Background(), p, cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := eng.Run(context.Background(), p, cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(first) != 3 || len(first) != len(second) {
		t.Fatalf("unexpected result counts %d, %d", len(first), len(second))
	}
	for i := range first {
		if first[i].CheckID != second[i].CheckID || first[i].Status != second[i].Status || first[i].Message() != second[i].Message() {
			t.Fatalf("run %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestEngine_Run_Fatal(t *testing.T) {
	p := loadPatch(t, "basic.patch")

	t.Run("unknown level key", func(t *testing.T) {
		cfg := config.New()
		cfg.Levels["nope"] = config.LevelWarning
		if _, err := NewEngine(nil).Run(context.Background(), p, cfg, nil); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown selector", func(t *testing.T) {
		cfg := config.New()
		cfg.Checks.Selector = "summary,nope"
		_, err := NewEngine(nil).Run(context.Background(), p, cfg, nil)
		if err == nil || !strings.Contains(err.Error(), "check not found: nope") {
			t.Fatalf("expected check not found, got %v", err)
		}
	})

	t.Run("nil inputs", func(t *testing.T) {
		if _, err := NewEngine(nil).Run(context.Background(), nil, config.New(), nil); err == nil {
			t.Fatal("expected error for nil patch")
		}
		if _, err := NewEngine(nil).Run(context.Background(), p, nil, nil); err == nil {
			t.Fatal("expected error for nil config")
		}
	})
}
