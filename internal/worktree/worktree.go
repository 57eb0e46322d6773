// Package worktree prepares the working tree a patch is applied to and
// provides the apply primitive. Both shell out to git.
package worktree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// gitBinary is the git executable; tests may point it elsewhere.
var gitBinary = "git"

// Tree is a git working tree on disk.
type Tree struct {
	Dir string
}

// Open uses an existing checkout at dir.
func Open(dir string) (*Tree, error) {
	// .git is a directory in a plain clone and a file in linked worktrees.
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil, fmt.Errorf("open working tree %s: %w", dir, err)
	}
	return &Tree{Dir: dir}, nil
}

// Apply applies diff to the working tree with git apply. The payload is
// passed on stdin unmodified. git apply is all-or-nothing: on failure the
// tree is left untouched.
func (t *Tree) Apply(ctx context.Context, diff []byte) error {
	slog.Debug("applying patch", "dir", t.Dir, "bytes", len(diff))
	_, err := run(ctx, t.Dir, bytes.NewReader(diff), "apply", "--whitespace=nowarn", "-")
	return err
}

// Fetch clones url into dir. A non-empty ref selects the branch or tag.
// The clone is shallow; only the tip is needed to apply a patch.
func Fetch(ctx context.Context, url, dir, ref string) (*Tree, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("fetch: repository URL is empty")
	}
	args := []string{"clone", "--quiet", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, "--", url, dir)

	slog.Debug("cloning repository", "url", url, "dir", dir, "ref", ref)
	if _, err := run(ctx, "", nil, args...); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return &Tree{Dir: dir}, nil
}

// Prepare returns the working tree for a run. An existing checkout at path is
// used in place; otherwise url is cloned into path, or into a temporary
// directory when path is empty. The returned cleanup removes anything
// Prepare created and is never nil.
func Prepare(ctx context.Context, url, path, ref string) (*Tree, func(), error) {
	noop := func() {}

	if path != "" {
		if tree, err := Open(path); err == nil {
			slog.Debug("using existing working tree", "dir", path)
			return tree, noop, nil
		}
		if url == "" {
			return nil, noop, fmt.Errorf("%s is not a git working tree and no --url was given", path)
		}
		tree, err := Fetch(ctx, url, path, ref)
		if err != nil {
			return nil, noop, err
		}
		return tree, noop, nil
	}

	tmp, err := os.MkdirTemp("", "patchmedic-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temporary working tree: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(tmp); err != nil {
			slog.Warn("failed to remove temporary working tree", "dir", tmp, "err", err)
		}
	}
	tree, err := Fetch(ctx, url, filepath.Join(tmp, "tree"), ref)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	return tree, cleanup, nil
}

// GitError carries the stderr of a failed git invocation.
type GitError struct {
	Args   []string
	Err    error
	Stderr string
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s: %v", e.Args[0], e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *GitError) Unwrap() error { return e.Err }

func run(ctx context.Context, dir string, stdin *bytes.Reader, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, gitBinary, args...)
	cmd.Dir = dir
	if stdin != nil {
		cmd.Stdin = stdin
	}
	// Never prompt for credentials; a fetch that needs them fails instead.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", &GitError{Args: args, Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}
	return stdout.String(), nil
}
