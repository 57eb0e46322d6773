package checks

import (
	"context"
	"errors"
	"testing"

	"patchmedic/internal/patch"
	"patchmedic/internal/rules"
)

func TestSummaryRule_Evaluate(t *testing.T) {
	rule := &SummaryRule{}

	tests := []struct {
		name           string
		summary        string
		expectedStatus rules.Status
	}{
		{name: "Pass - Summary Present", summary: "Fix the frobnicator.", expectedStatus: rules.StatusPass},
		{name: "Pass - Multi Paragraph", summary: "one\n\ntwo", expectedStatus: rules.StatusPass},
		{name: "Fail - Empty", summary: "", expectedStatus: rules.StatusFail},
		{name: "Fail - Whitespace Only", summary: " \t\n ", expectedStatus: rules.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, patch.Header{Summary: tt.summary})
			result := rule.Evaluate(context.Background(), env)

			if result.Status != tt.expectedStatus {
				t.Fatalf("expected status %v, got %v", tt.expectedStatus, result.Status)
			}
			if result.CheckID != "summary" {
				t.Fatalf("expected check ID summary, got %s", result.CheckID)
			}
			if tt.expectedStatus == rules.StatusFail {
				var mf *rules.MissingFieldError
				if !errors.As(result.Err, &mf) {
					t.Fatalf("expected *MissingFieldError, got %T", result.Err)
				}
				if mf.Detail() != "summary is empty" {
					t.Fatalf("unexpected detail %q", mf.Detail())
				}
			}
		})
	}
}

func TestSignedOffRule_Evaluate(t *testing.T) {
	rule := &SignedOffRule{}

	pass := rule.Evaluate(context.Background(), newEnv(t, patch.Header{Signatures: []string{"Signed-off-by: A <a@x>"}}))
	if !pass.Passed() {
		t.Fatalf("expected pass, got %+v", pass)
	}

	fail := rule.Evaluate(context.Background(), newEnv(t, patch.Header{}))
	var mf *rules.MissingFieldError
	if fail.Passed() || !errors.As(fail.Err, &mf) || mf.Field != "signatures" {
		t.Fatalf("expected signatures MissingFieldError, got %+v", fail)
	}
}

func TestSummaryRule_TrailerLookingBody(t *testing.T) {
	p, err := patch.Parse([]byte("From abc 2001\nFrom: x\nDate: d\nSubject: s\n\n" +
		"Fixes: crash when the config file is empty\n---\n x\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	env := newEnv(t, p.Header)

	if r := (&SummaryRule{}).Evaluate(context.Background(), env); !r.Passed() {
		t.Fatalf("a non-empty body must satisfy summary, got %v (%s)", r.Err, r.Detail())
	}
	if r := (&SignedOffRule{}).Evaluate(context.Background(), env); r.Passed() {
		t.Fatal("no Signed-off-by line was given")
	}
}
