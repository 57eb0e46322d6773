package checks

import (
	"context"

	"patchmedic/internal/rules"
)

type SignedOffRule struct{}

func (r *SignedOffRule) ID() string {
	return "signed off"
}

func (r *SignedOffRule) Title() string {
	return "Signed-off-by Trailer Present"
}

func (r *SignedOffRule) Description() string {
	return "Verifies that the commit message ends with at least one Signed-off-by trailer."
}

func (r *SignedOffRule) Evaluate(ctx context.Context, env *rules.Env) rules.Result {
	if len(env.Patch.Header.Signatures) == 0 {
		return rules.FailResult(r.ID(), &rules.MissingFieldError{
			Field:   "signatures",
			Message: "no Signed-off-by trailer",
		})
	}
	return rules.PassResult(r.ID())
}
