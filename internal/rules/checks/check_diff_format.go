package checks

import (
	"context"

	"patchmedic/internal/rules"
)

type DiffFormatRule struct{}

func (r *DiffFormatRule) ID() string {
	return "diff format"
}

func (r *DiffFormatRule) Title() string {
	return "Diff Payload Is a Unified Diff"
}

func (r *DiffFormatRule) Description() string {
	return "Parses the payload after the header and fails if it holds no file diff or a malformed hunk."
}

func (r *DiffFormatRule) Evaluate(ctx context.Context, env *rules.Env) rules.Result {
	if _, err := env.Patch.Files(); err != nil {
		return rules.FailResult(r.ID(), &rules.DiffFormatError{Err: err})
	}
	return rules.PassResult(r.ID())
}
