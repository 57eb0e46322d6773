package output

import "io"

type flusher interface {
	Flush() error
}

// flushIfPossible flushes buffered writers such as bufio.Writer so each
// console line is visible as soon as its check is reported.
func flushIfPossible(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
