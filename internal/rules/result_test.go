package rules

import (
	"errors"
	"fmt"
	"testing"
)

func TestResult_MessageAndDetail(t *testing.T) {
	applyErr := errors.New("error: patch failed: README.md:1")

	tests := []struct {
		name    string
		result  Result
		passed  bool
		message string
		detail  string
	}{
		{
			name:   "pass",
			result: PassResult("summary"),
			passed: true,
		},
		{
			name:    "missing field",
			result:  FailResult("summary", &MissingFieldError{Field: "summary", Message: "summary is empty"}),
			message: "header field is missing",
			detail:  "summary is empty",
		},
		{
			name:    "apply error keeps primitive text",
			result:  FailResult("apply patch", &ApplyError{Err: applyErr}),
			message: "patch cannot be applied",
			detail:  "error: patch failed: README.md:1",
		},
		{
			name:    "author deny-list lists every match",
			result:  FailResult("valid author", &AuthorDenylistError{Author: "From: a@example.com", Matches: []string{"example", `\.com$`}}),
			message: "found an invalid author",
			detail:  `From: a@example.com matches "example", "\\.com$"`,
		},
		{
			name:    "wrapped detailer",
			result:  FailResult("diff format", fmt.Errorf("outer: %w", &DiffFormatError{Err: errors.New("bad hunk")})),
			message: "outer: diff payload is malformed",
			detail:  "bad hunk",
		},
		{
			name:    "plain error has no detail",
			result:  FailResult("x", errors.New("boom")),
			message: "boom",
		},
		{
			name:    "panic",
			result:  FailResult("x", &PanicError{Value: "nil map"}),
			message: "check panicked",
			detail:  "nil map",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Passed(); got != tt.passed {
				t.Errorf("Passed() = %v, want %v", got, tt.passed)
			}
			if got := tt.result.Message(); got != tt.message {
				t.Errorf("Message() = %q, want %q", got, tt.message)
			}
			if got := tt.result.Detail(); got != tt.detail {
				t.Errorf("Detail() = %q, want %q", got, tt.detail)
			}
		})
	}
}

func TestApplyError_Unwrap(t *testing.T) {
	err := error(&ApplyError{Err: ErrNoWorkTree})
	if !errors.Is(err, ErrNoWorkTree) {
		t.Fatal("ApplyError must unwrap to the primitive's error")
	}
}

func TestResultFromError(t *testing.T) {
	if r := ResultFromError("a", nil); !r.Passed() || r.CheckID != "a" {
		t.Fatalf("nil error should pass: %+v", r)
	}
	if r := ResultFromError("a", errors.New("x")); r.Passed() || r.Status != StatusFail {
		t.Fatalf("error should fail: %+v", r)
	}
}
