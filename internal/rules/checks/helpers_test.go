package checks

import (
	"context"
	"testing"

	"patchmedic/internal/config"
	"patchmedic/internal/patch"
	"patchmedic/internal/rules"
)

type fakeTree struct {
	err   error
	calls int
	got   []byte
}

func (f *fakeTree) Apply(ctx context.Context, diff []byte) error {
	f.calls++
	f.got = diff
	return f.err
}

func newEnv(t *testing.T, h patch.Header, denyList ...string) *rules.Env {
	t.Helper()
	cfg := config.New()
	cfg.InvalidAuthors.RegularExpressions = denyList
	if err := cfg.InvalidAuthors.Compile(); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return &rules.Env{
		Patch:  &patch.Patch{Header: h},
		Config: cfg,
	}
}
