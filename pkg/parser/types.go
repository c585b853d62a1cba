// Package parser provides log reading, line classification and timestamp normalization.
package parser

import "time"

// Severity levels with special meaning to the analysis.
const (
	LevelInfo     = "INFO"
	LevelWarn     = "WARN"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelFatal    = "FATAL"
	LevelCritical = "CRITICAL"
)

// Format names reported on classified records.
const (
	FormatJSON         = "json"
	FormatJSONObject   = "json-object"
	FormatBracketed    = "bracketed"
	FormatSyslog       = "syslog"
	FormatBare         = "bare"
	FormatUnstructured = "unstructured"
)

// Record is the structured form of a single log line.
type Record struct {
	// Raw is the original line content.
	Raw string

	// RawTimestamp is the unparsed timestamp substring, empty when no format matched.
	RawTimestamp string

	// Timestamp is the normalized instant. The zero value means unknown.
	Timestamp time.Time

	// Level is the uppercased severity token (INFO when nothing matched).
	Level string

	// Message is the extracted payload, or the trimmed line for unstructured input.
	Message string

	// Format is the name of the line format that produced this record.
	Format string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source.
	LineNum int
}

// HasTimestamp reports whether the record carries a normalized timestamp.
func (r *Record) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// IsError reports whether the record is in the error tier.
func (r *Record) IsError() bool {
	return IsErrorLevel(r.Level)
}

// IsWarning reports whether the record is in the warning tier.
func (r *Record) IsWarning() bool {
	return IsWarningLevel(r.Level)
}

// IsErrorLevel reports whether level is ERROR, FATAL or CRITICAL.
func IsErrorLevel(level string) bool {
	switch level {
	case LevelError, LevelFatal, LevelCritical:
		return true
	}
	return false
}

// IsWarningLevel reports whether level is WARN or WARNING.
func IsWarningLevel(level string) bool {
	return level == LevelWarn || level == LevelWarning
}

// LogLine is a raw log line before classification.
type LogLine struct {
	// Content is the raw line text.
	Content string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}
