package checks

import (
	"context"

	"patchmedic/internal/rules"
)

type ApplyPatchRule struct{}

func (r *ApplyPatchRule) ID() string {
	return "apply patch"
}

func (r *ApplyPatchRule) Title() string {
	return "Patch Applies Cleanly"
}

func (r *ApplyPatchRule) Description() string {
	return "Applies the diff to the target working tree and fails if it does not apply cleanly. This is the only check that writes to disk."
}

func (r *ApplyPatchRule) Evaluate(ctx context.Context, env *rules.Env) rules.Result {
	if env.Tree == nil {
		return rules.FailResult(r.ID(), &rules.ApplyError{Err: rules.ErrNoWorkTree})
	}
	if err := env.Tree.Apply(ctx, env.Patch.Diff); err != nil {
		return rules.FailResult(r.ID(), &rules.ApplyError{Err: err})
	}
	return rules.PassResult(r.ID())
}
