package output

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"patchmedic/internal/config"
	"patchmedic/internal/rules"
)

// ReportSink collects results and writes a Markdown report to path on Close.
type ReportSink struct {
	path   string
	file   *os.File
	levels LevelResolver

	mu       sync.Mutex
	patch    string
	results  []rules.Result
	exitCode int
	finished bool
}

func NewReportSink(path string, levels LevelResolver) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return &ReportSink{path: path, file: f, levels: levels}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t := v.(type) {
	case rules.Result:
		s.results = append(s.results, t)
	case Event:
		switch t.Type {
		case EventRunStarted:
			s.patch = t.Patch
		case EventRunFinished:
			s.exitCode = t.ExitCode
			s.finished = true
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, werr := s.file.WriteString(s.render())
	cerr := s.file.Close()
	if werr != nil {
		return fmt.Errorf("write report %s: %w", s.path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("close report %s: %w", s.path, cerr)
	}
	return nil
}

func (s *ReportSink) levelFor(id string) config.Level {
	if s.levels == nil {
		return config.LevelError
	}
	return s.levels.LevelFor(id)
}

func (s *ReportSink) render() string {
	var b strings.Builder
	b.WriteString("# patchmedic report\n\n")
	if s.patch != "" {
		fmt.Fprintf(&b, "Patch: `%s`\n\n", s.patch)
	}

	counts := map[config.Level]int{}
	passed := 0
	for _, r := range s.results {
		if r.Passed() {
			passed++
			continue
		}
		counts[s.levelFor(r.CheckID)]++
	}
	fmt.Fprintf(&b, "%d checks: %d passed, %d errors, %d warnings, %d skipped\n\n",
		len(s.results), passed, counts[config.LevelError], counts[config.LevelWarning], counts[config.LevelSkip])
	if s.finished {
		fmt.Fprintf(&b, "Exit code: %d\n\n", s.exitCode)
	}

	b.WriteString("| | Check | Status | Level | Message |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range s.results {
		level := s.levelFor(r.CheckID)
		msg := r.Message()
		if d := r.Detail(); d != "" {
			msg += " (" + d + ")"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			Icon(r, level), markdownCell(r.CheckID), r.Status, level, markdownCell(msg))
	}
	return b.String()
}

// markdownCell keeps a value inside one table cell.
func markdownCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
