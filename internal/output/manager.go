package output

import (
	"errors"
	"fmt"
)

// Sink is a destination for run records: rules.Result values in check order,
// framed by Event values.
type Sink interface {
	Write(v any) error
	Close() error
}

// Manager fans every record out to all of its sinks. A failing sink does not
// stop the others.
type Manager struct {
	sinks []Sink
}

func NewManager(sinks ...Sink) (*Manager, error) {
	m := &Manager{}
	for _, s := range sinks {
		if err := m.AddSink(s); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	if s == nil {
		return errors.New("sink must not be nil")
	}
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Manager) Write(v any) error {
	return m.each("write", func(s Sink) error { return s.Write(v) })
}

func (m *Manager) Close() error {
	return m.each("close", Sink.Close)
}

func (m *Manager) each(op string, fn func(Sink) error) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := fn(s); err != nil {
			errs = append(errs, fmt.Errorf("%s %T: %w", op, s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during sink %s: %w", op, errors.Join(errs...))
	}
	return nil
}
