package parser

import (
	"context"
	"errors"
)

// LogSource provides an iterator over raw log lines.
// Implementations must be safe for sequential access (not concurrent).
type LogSource interface {
	// Next returns the next raw log line. Every line is returned, including
	// blank and unstructured ones. Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (*LogLine, error)

	// Close releases any resources held by the source.
	Close() error
}

// Errors returned when a log input cannot be opened at all.
var (
	ErrInputNotFound    = errors.New("log input not found")
	ErrPermissionDenied = errors.New("permission denied reading log input")
)
