package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoWorkTree is wrapped by ApplyError when the run has no working tree.
var ErrNoWorkTree = errors.New("no working tree (apply was disabled)")

// detailer is implemented by failures that carry diagnostic detail beyond
// their display text.
type detailer interface {
	Detail() string
}

// ApplyError reports that the apply primitive rejected the diff. Err is the
// primitive's error, unchanged.
type ApplyError struct {
	Err error
}

func (e *ApplyError) Error() string  { return "patch cannot be applied" }
func (e *ApplyError) Detail() string { return e.Err.Error() }
func (e *ApplyError) Unwrap() error  { return e.Err }

// MissingFieldError reports a header-derived value that a check requires but
// that is empty.
type MissingFieldError struct {
	Field   string
	Message string
}

func (e *MissingFieldError) Error() string  { return "header field is missing" }
func (e *MissingFieldError) Detail() string { return e.Message }

// AuthorDenylistError reports an author matching the deny-list. Matches holds
// every matching pattern in deny-list order.
type AuthorDenylistError struct {
	Author  string
	Matches []string
}

func (e *AuthorDenylistError) Error() string { return "found an invalid author" }

func (e *AuthorDenylistError) Detail() string {
	quoted := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return fmt.Sprintf("%s matches %s", e.Author, strings.Join(quoted, ", "))
}

// DiffFormatError reports a diff payload that cannot be parsed as a unified
// diff.
type DiffFormatError struct {
	Err error
}

func (e *DiffFormatError) Error() string  { return "diff payload is malformed" }
func (e *DiffFormatError) Detail() string { return e.Err.Error() }
func (e *DiffFormatError) Unwrap() error  { return e.Err }

// PanicError records a check that panicked. The run continues.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string  { return "check panicked" }
func (e *PanicError) Detail() string { return fmt.Sprint(e.Value) }
