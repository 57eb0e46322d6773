package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is the configured severity of a check. It only changes how a failed
// check is presented and whether it counts toward the exit status; it never
// decides whether the check runs.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelSkip
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "Error"
	case LevelWarning:
		return "Warning"
	case LevelSkip:
		return "Skip"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel accepts Error, Warning or Skip (case-insensitive).
func ParseLevel(raw string) (Level, error) {
	switch normalizeEnumValue(raw) {
	case "error":
		return LevelError, nil
	case "warning":
		return LevelWarning, nil
	case "skip":
		return LevelSkip, nil
	default:
		return 0, fmt.Errorf("unsupported level %q (must be one of: Error, Warning, Skip)", raw)
	}
}

func (l Level) MarshalYAML() (any, error) {
	return l.String(), nil
}

func (l *Level) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseLevel(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// LevelFor resolves the effective level of the named check. Checks without a
// configured level are errors.
func (c *Config) LevelFor(checkID string) Level {
	if c == nil {
		return LevelError
	}
	if l, ok := c.Levels[checkID]; ok {
		return l
	}
	return LevelError
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
