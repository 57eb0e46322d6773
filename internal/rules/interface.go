package rules

import (
	"context"

	"patchmedic/internal/config"
	"patchmedic/internal/patch"
)

type Check interface {
	ID() string
	Title() string
	Description() string

	// Evaluate runs the check against the shared environment.
	// Checks MUST NOT modify the Patch or the Config.
	Evaluate(ctx context.Context, env *Env) Result
}

// Applier is the repository handle: it applies a raw diff payload to a
// working tree.
type Applier interface {
	Apply(ctx context.Context, diff []byte) error
}

// Env is the read-only context every check is evaluated against.
type Env struct {
	Patch  *patch.Patch
	Config *config.Config

	// Tree is nil when no working tree was prepared (--no-apply).
	Tree Applier
}
