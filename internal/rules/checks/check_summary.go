package checks

import (
	"context"
	"strings"

	"patchmedic/internal/rules"
)

type SummaryRule struct{}

func (r *SummaryRule) ID() string {
	return "summary"
}

func (r *SummaryRule) Title() string {
	return "Commit Message Summary Present"
}

func (r *SummaryRule) Description() string {
	return "Verifies that the commit message has a body between the subject line and the trailers."
}

func (r *SummaryRule) Evaluate(ctx context.Context, env *rules.Env) rules.Result {
	if strings.TrimSpace(env.Patch.Header.Summary) == "" {
		return rules.FailResult(r.ID(), &rules.MissingFieldError{
			Field:   "summary",
			Message: "summary is empty",
		})
	}
	return rules.PassResult(r.ID())
}
