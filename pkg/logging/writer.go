package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// WriterLogger writes structured log lines to any writer
type WriterLogger struct {
	mu     *sync.Mutex
	writer io.Writer
	closer io.Closer
	format Format
	level  Level
	fields Fields
}

// NewWriterLogger creates a logger over an arbitrary writer
func NewWriterLogger(w io.Writer, format Format, level Level) *WriterLogger {
	return &WriterLogger{
		mu:     &sync.Mutex{},
		writer: w,
		format: format,
		level:  level,
	}
}

// NewFileLogger creates a logger appending to the given file path
func NewFileLogger(path string, format Format, level Level) (*WriterLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := NewWriterLogger(file, format, level)
	logger.closer = file
	return logger, nil
}

// Debug logs a debug message
func (l *WriterLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *WriterLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *WriterLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *WriterLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields; the underlying
// writer and lock are shared.
func (l *WriterLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &WriterLogger{
		mu:     l.mu,
		writer: l.writer,
		closer: l.closer,
		format: l.format,
		level:  l.level,
		fields: merged,
	}
}

// Close closes the underlying writer if it is closable
func (l *WriterLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *WriterLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.level {
		return
	}

	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	if err != nil {
		merged["error"] = err.Error()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.format {
	case FormatText:
		fmt.Fprintf(l.writer, "%s [%s] %s%s\n",
			time.Now().Format(time.RFC3339), level.String(), msg, textFields(merged))
	default:
		entry := map[string]interface{}{
			"time":    time.Now().Format(time.RFC3339Nano),
			"level":   level.String(),
			"message": msg,
		}
		for k, v := range merged {
			entry[k] = v
		}
		if data, err := json.Marshal(entry); err == nil {
			l.writer.Write(append(data, '\n'))
		}
	}
}

// textFields renders fields deterministically for the text format
func textFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for _, k := range keys {
		out += fmt.Sprintf(" %s=%v", k, fields[k])
	}
	return out
}
