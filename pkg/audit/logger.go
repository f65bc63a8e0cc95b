package audit

import (
	"context"
)

// Logger is the audit trail sink. Implementations must be safe for
// concurrent use; a failed write must not fail the audited operation.
type Logger interface {
	Log(ctx context.Context, record *Record) error
	Close() error
}

// NopLogger discards every record. It stands in when auditing is disabled.
type NopLogger struct{}

func (NopLogger) Log(ctx context.Context, record *Record) error { return nil }
func (NopLogger) Close() error                                  { return nil }
