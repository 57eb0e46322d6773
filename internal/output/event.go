package output

// Event frames a run for sinks that need more than the results themselves.
type Event struct {
	Type string

	// Patch is the path of the patch under check (run.started).
	Patch string
	// Checks is the number of checks selected (run.started).
	Checks int
	// ExitCode is the status the run will exit with (run.finished).
	ExitCode int
}

const (
	EventRunStarted  = "run.started"
	EventRunFinished = "run.finished"
)
