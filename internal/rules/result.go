package rules

import "errors"

type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Result is the outcome of one check in one run.
type Result struct {
	CheckID string
	Status  Status
	// Err is the typed failure; nil when the check passed.
	Err error
}

func (r Result) Passed() bool {
	return r.Status == StatusPass
}

// Message is the display text of the failure, empty on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Detail is the diagnostic detail of the failure, empty on success or when
// the error carries none.
func (r Result) Detail() string {
	if r.Err == nil {
		return ""
	}
	var d detailer
	if errors.As(r.Err, &d) {
		return d.Detail()
	}
	return ""
}
