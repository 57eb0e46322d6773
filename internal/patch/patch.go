package patch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// ErrHeaderNotFound is wrapped by ParseError when the header grammar does not
// match anywhere in the patch text.
var ErrHeaderNotFound = errors.New("patch header not found")

// ErrNoFileDiffs is returned by Files when the payload contains no file diff.
var ErrNoFileDiffs = errors.New("no file diffs in patch")

// ParseError reports a patch that does not look like a patch. It is fatal:
// no check runs against a patch that failed to parse.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse patch: %v", e.Err)
	}
	return fmt.Sprintf("parse patch %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Patch bundles a parsed Header with the raw diff payload that follows it.
// A Patch is read-only once constructed.
type Patch struct {
	Path   string
	Header Header
	// Diff holds the bytes after the "---" delimiter, unmodified. It is what
	// gets handed to the apply primitive.
	Diff []byte
}

// Load reads the patch file at path wholesale and parses it.
func Load(path string) (*Patch, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patch: %w", err)
	}
	p, err := Parse(content)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	p.Path = path
	return p, nil
}

// Parse parses patch content. The content may contain arbitrary bytes after
// the header.
func Parse(content []byte) (*Patch, error) {
	h, end, ok := parseHeader(content)
	if !ok {
		return nil, &ParseError{Err: ErrHeaderNotFound}
	}
	return &Patch{
		Header: h,
		Diff:   content[end:],
	}, nil
}

// FileStat summarizes one file touched by the diff payload.
type FileStat struct {
	Name    string
	Added   int
	Changed int
	Deleted int
}

var (
	firstFileHeader = regexp.MustCompile(`(?m)^(?:diff |--- )`)
	signatureLine   = regexp.MustCompile(`(?m)^-- \n`)
)

// Files parses the diff payload and returns one FileStat per file diff.
// The diffstat preamble and the trailing "-- " version signature that git
// format-patch writes around the diff are skipped.
func (p *Patch) Files() ([]FileStat, error) {
	payload := p.Diff
	loc := firstFileHeader.FindIndex(payload)
	if loc == nil {
		return nil, ErrNoFileDiffs
	}
	payload = payload[loc[0]:]
	if sigs := signatureLine.FindAllIndex(payload, -1); len(sigs) > 0 {
		payload = payload[:sigs[len(sigs)-1][0]]
	}

	fileDiffs, err := diff.NewMultiFileDiffReader(bytes.NewReader(payload)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}
	if len(fileDiffs) == 0 {
		return nil, ErrNoFileDiffs
	}

	stats := make([]FileStat, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		name := fd.NewName
		if name == "" || name == "/dev/null" {
			name = fd.OrigName
		}
		name = strings.TrimPrefix(name, "a/")
		name = strings.TrimPrefix(name, "b/")

		st := fd.Stat()
		stats = append(stats, FileStat{
			Name:    name,
			Added:   int(st.Added),
			Changed: int(st.Changed),
			Deleted: int(st.Deleted),
		})
	}
	return stats, nil
}
