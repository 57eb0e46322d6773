package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Levels maps a check ID to its configured severity (see Config.LevelFor).
	Levels map[string]Level `yaml:"levels"`

	// InvalidAuthors is the author deny-list used by the "valid author" check.
	InvalidAuthors InvalidAuthors `yaml:"invalid_authors"`

	// The sections below come from CLI flags and are never serialized.
	Target  Target  `yaml:"-"`
	Checks  Checks  `yaml:"-"`
	Output  Output  `yaml:"-"`
	Runtime Runtime `yaml:"-"`
}

type InvalidAuthors struct {
	// RegularExpressions is the ordered deny-list. An author matching any of
	// them fails the "valid author" check.
	RegularExpressions []string `yaml:"regular_expressions"`

	compiled []*regexp.Regexp
}

type Target struct {
	// URL is the repository to clone before applying the patch (see --url).
	// github.com/OWNER/REPO shorthands are resolved through the GitHub API.
	URL string

	// Path is the working tree (see --path). An existing checkout is used in
	// place; otherwise the repository is cloned into it. Empty means a
	// temporary directory that is removed after the run.
	Path string

	// Ref is the branch or tag to check out when cloning (see --ref).
	Ref string

	// GitHubAPIURL overrides the REST endpoint used to resolve github.com
	// targets (see --github-api-url). Empty means api.github.com.
	GitHubAPIURL string

	// NoApply skips fetching entirely; the "apply patch" check then fails
	// (see --no-apply).
	NoApply bool
}

type Checks struct {
	// Selector is a comma-separated list of check IDs to run. Empty means all.
	Selector string
}

type Output struct {
	// Report writes a Markdown report to this path (see --report).
	Report string

	// NoConsole suppresses the console report (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Concurrency is how many checks may run at once (see --concurrency).
	// Output order is unaffected. Must be >= 1.
	Concurrency int

	// Timeout bounds the whole run, including the clone (see --timeout).
	// Must be > 0.
	Timeout time.Duration

	// Verbose enables debug logging on stderr.
	Verbose bool
}

func New() *Config {
	return &Config{
		Levels: make(map[string]Level),
		Runtime: Runtime{
			Concurrency: 1,
			Timeout:     10 * time.Minute,
		},
	}
}

// Load reads a YAML config file on top of the defaults and compiles its
// deny-list. Flag-driven sections are left at their defaults.
func Load(path string) (*Config, error) {
	c := New()
	if err := c.LoadFile(path); err != nil {
		return nil, err
	}
	if err := c.InvalidAuthors.Compile(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile decodes the YAML document at path into c. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return c.decode(data)
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode config: %w", err)
	}
	if c.Levels == nil {
		c.Levels = make(map[string]Level)
	}
	return nil
}

// Validate normalizes flag input and compiles the author deny-list. It must
// run before any check does.
func (c *Config) Validate() error {
	c.Target.URL = strings.TrimSpace(c.Target.URL)
	c.Target.Path = strings.TrimSpace(c.Target.Path)
	c.Target.Ref = strings.TrimSpace(c.Target.Ref)
	c.Target.GitHubAPIURL = strings.TrimSpace(c.Target.GitHubAPIURL)

	if !c.Target.NoApply && c.Target.URL == "" && c.Target.Path == "" {
		return errors.New("at least one of --url or --path must be provided (or use --no-apply)")
	}

	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	if err := c.InvalidAuthors.Compile(); err != nil {
		return err
	}
	return nil
}

// Compile compiles the deny-list once. An invalid pattern is a configuration
// error rather than a failure in the middle of a run.
func (a *InvalidAuthors) Compile() error {
	compiled := make([]*regexp.Regexp, 0, len(a.RegularExpressions))
	for i, expr := range a.RegularExpressions {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid_authors.regular_expressions[%d] %q: %w", i, expr, err)
		}
		compiled = append(compiled, re)
	}
	a.compiled = compiled
	return nil
}

// Patterns returns the compiled deny-list in declared order.
func (a *InvalidAuthors) Patterns() []*regexp.Regexp {
	return a.compiled
}

// Marshal renders the serializable part of c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WithEffectiveLevels returns a copy of c whose Levels lists every given check
// ID at its resolved level.
func (c *Config) WithEffectiveLevels(checkIDs []string) *Config {
	out := *c
	out.Levels = make(map[string]Level, len(checkIDs)+len(c.Levels))
	for id, l := range c.Levels {
		out.Levels[id] = l
	}
	for _, id := range checkIDs {
		out.Levels[id] = c.LevelFor(id)
	}
	return &out
}

// SplitCommaList trims and splits comma-delimited values, dropping empties.
func SplitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
