package audit

import (
	"context"
	"errors"
)

// MultiLogger fans every record out to several sinks, typically a file for
// operators and the database for the admin API.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a logger writing to all the given sinks.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log writes the record to every sink and joins any failures.
func (m *MultiLogger) Log(ctx context.Context, record *Record) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Log(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m *MultiLogger) Close() error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
