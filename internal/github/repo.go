package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// CloneTarget is what the working tree preparation needs to fetch a
// repository hosted on GitHub.
type CloneTarget struct {
	Owner         string
	Repo          string
	CloneURL      string
	DefaultBranch string
}

// ParseRepoURL recognizes github.com/OWNER/REPO, with or without a scheme
// and a .git suffix. Anything else, including SSH remotes, is not ours to
// resolve and reports ok=false.
func ParseRepoURL(raw string) (owner, repo string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", false
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return "", "", false
	}
	if !strings.EqualFold(strings.TrimPrefix(u.Host, "www."), "github.com") {
		return "", "", false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 {
		return "", "", false
	}
	owner = parts[0]
	repo = strings.TrimSuffix(parts[1], ".git")
	if owner == "" || repo == "" {
		return "", "", false
	}
	return owner, repo, true
}

// ResolveCloneTarget asks the API for the repository's clone URL and
// default branch.
func ResolveCloneTarget(ctx context.Context, c *Client, owner, repo string) (CloneTarget, error) {
	r, _, err := c.Client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return CloneTarget{}, fmt.Errorf("resolve %s/%s: %w", owner, repo, err)
	}
	t := CloneTarget{
		Owner:         owner,
		Repo:          repo,
		CloneURL:      r.GetCloneURL(),
		DefaultBranch: r.GetDefaultBranch(),
	}
	if t.CloneURL == "" {
		return CloneTarget{}, fmt.Errorf("resolve %s/%s: repository has no clone URL", owner, repo)
	}
	return t, nil
}
