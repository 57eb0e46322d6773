package github

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// TokenSource names where a token came from. It is safe to log; the token
// itself never is.
type TokenSource string

const (
	TokenSourceNone TokenSource = ""
	TokenSourceEnv  TokenSource = "env:GITHUB_TOKEN"
	TokenSourceGH   TokenSource = "gh"
)

// ghTimeout bounds the gh call when the caller set no deadline.
const ghTimeout = 5 * time.Second

// ResolveToken looks up a GitHub token in GITHUB_TOKEN, then asks the GitHub
// CLI. An empty token with a nil error means anonymous access.
func ResolveToken(ctx context.Context) (string, TokenSource, error) {
	if tok := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); tok != "" {
		return tok, TokenSourceEnv, nil
	}

	tok, err := ghAuthToken(ctx)
	if err != nil || tok == "" {
		return "", TokenSourceNone, err
	}
	return tok, TokenSourceGH, nil
}

func ghAuthToken(ctx context.Context) (string, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return "", nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ghTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "gh", "auth", "token", "-h", "github.com")
	cmd.Env = append(withoutEnv(os.Environ(), "GH_PAGER"), "GH_PAGER=cat")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Not logged in. gh output is not surfaced.
		return "", nil
	}

	tok := strings.TrimSpace(string(out))
	if strings.ContainsAny(tok, " \t\r\n") {
		return "", errors.New("gh returned a malformed token")
	}
	return tok, nil
}

func withoutEnv(env []string, key string) []string {
	prefix := key + "="
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if !strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	return out
}
