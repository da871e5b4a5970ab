package logging

import "context"

// NullLogger discards everything. It stands in wherever a Logger is
// required but logging is disabled.
type NullLogger struct{}

// NewNullLogger creates a discarding logger
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Debug(ctx context.Context, msg string, fields Fields)            {}
func (l *NullLogger) Info(ctx context.Context, msg string, fields Fields)             {}
func (l *NullLogger) Warn(ctx context.Context, msg string, fields Fields)             {}
func (l *NullLogger) Error(ctx context.Context, msg string, err error, fields Fields) {}

// WithFields returns the receiver; there is nothing to attach fields to.
func (l *NullLogger) WithFields(fields Fields) Logger { return l }

// Close is a no-op
func (l *NullLogger) Close() error { return nil }
