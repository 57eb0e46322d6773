package checks

import (
	"context"

	"patchmedic/internal/rules"
)

type ValidAuthorRule struct{}

func (r *ValidAuthorRule) ID() string {
	return "valid author"
}

func (r *ValidAuthorRule) Title() string {
	return "Author Not Deny-Listed"
}

func (r *ValidAuthorRule) Description() string {
	return "Fails when the From: line matches any pattern in invalid_authors.regular_expressions. Every matching pattern is reported."
}

func (r *ValidAuthorRule) Evaluate(ctx context.Context, env *rules.Env) rules.Result {
	author := env.Patch.Header.Author

	var matches []string
	for _, re := range env.Config.InvalidAuthors.Patterns() {
		if re.MatchString(author) {
			matches = append(matches, re.String())
		}
	}

	if len(matches) > 0 {
		return rules.FailResult(r.ID(), &rules.AuthorDenylistError{
			Author:  author,
			Matches: matches,
		})
	}
	return rules.PassResult(r.ID())
}
