package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"patchmedic/internal/config"
	"patchmedic/internal/rules"
)

// LevelResolver maps a check ID to its configured severity.
// *config.Config implements it.
type LevelResolver interface {
	LevelFor(checkID string) config.Level
}

const (
	iconPass    = "✅"
	iconError   = "❌"
	iconWarning = "⚠️"
	iconSkip    = "🙈"
)

var (
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	skipColor    = color.New(color.Faint)
)

// ConsoleSink prints one line per check result:
//
//	✅ summary
//	❌ valid author: found an invalid author (From: a@example.com matches "example")
//
// Failures at Skip level are still printed, faint, so nothing is hidden.
type ConsoleSink struct {
	writer io.Writer
	levels LevelResolver
	mu     sync.Mutex
}

func NewConsoleSink(w io.Writer, levels LevelResolver) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{writer: w, levels: levels}
}

func (s *ConsoleSink) Write(v any) error {
	r, ok := v.(rules.Result)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.writer, FormatResult(r, s.levelFor(r.CheckID))); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) levelFor(id string) config.Level {
	if s.levels == nil {
		return config.LevelError
	}
	return s.levels.LevelFor(id)
}

// Icon is the marker printed in front of a result.
func Icon(r rules.Result, level config.Level) string {
	if r.Passed() {
		return iconPass
	}
	switch level {
	case config.LevelWarning:
		return iconWarning
	case config.LevelSkip:
		return iconSkip
	default:
		return iconError
	}
}

// FormatResult renders a result as one console line, colored by level when
// color output is enabled.
func FormatResult(r rules.Result, level config.Level) string {
	if r.Passed() {
		return iconPass + " " + r.CheckID
	}

	var b strings.Builder
	b.WriteString(Icon(r, level))
	b.WriteString(" ")
	b.WriteString(r.CheckID)
	b.WriteString(": ")
	b.WriteString(r.Message())
	if d := r.Detail(); d != "" {
		b.WriteString(" (")
		b.WriteString(d)
		b.WriteString(")")
	}
	line := b.String()

	switch level {
	case config.LevelWarning:
		return warningColor.Sprint(line)
	case config.LevelSkip:
		return skipColor.Sprint(line)
	default:
		return errorColor.Sprint(line)
	}
}
