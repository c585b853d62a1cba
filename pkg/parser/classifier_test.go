package parser

import (
	"strings"
	"testing"
	"time"
)

func newTestClassifier() *Classifier {
	return NewClassifier(NewNormalizer(WithSyslogYear(2025)))
}

func TestClassifier_Classify(t *testing.T) {
	c := newTestClassifier()
	ts := time.Date(2025, 10, 26, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		line      string
		format    string
		level     string
		message   string
		rawTS     string
		timestamp time.Time
	}{
		{
			name:      "bracketed",
			line:      "[2025-10-26 14:00:00] ERROR: disk full",
			format:    FormatBracketed,
			level:     "ERROR",
			message:   "disk full",
			rawTS:     "2025-10-26 14:00:00",
			timestamp: ts,
		},
		{
			name:      "bracketed lowercase level",
			line:      "[2025-10-26 14:00:00] warning: cache miss ratio high",
			format:    FormatBracketed,
			level:     "WARNING",
			message:   "cache miss ratio high",
			rawTS:     "2025-10-26 14:00:00",
			timestamp: ts,
		},
		{
			name:      "positional json",
			line:      `{"timestamp":"2025-10-26T14:00:00Z","level":"error","message":"disk full"}`,
			format:    FormatJSON,
			level:     "ERROR",
			message:   "disk full",
			rawTS:     "2025-10-26T14:00:00Z",
			timestamp: ts,
		},
		{
			name:      "positional json with noise and escapes",
			line:      `{"timestamp": "2025-10-26T14:00:00Z", "host": "a", "level": "fatal", "extra": [1,2], "message": "bad \"quote\""}`,
			format:    FormatJSON,
			level:     "FATAL",
			message:   `bad "quote"`,
			rawTS:     "2025-10-26T14:00:00Z",
			timestamp: ts,
		},
		{
			name:      "positional json with json-only escapes",
			line:      `{"timestamp":"2025-10-26T14:00:00Z","level":"error","message":"GET \/api\/v1 caf\u00e9 \ttab"}`,
			format:    FormatJSON,
			level:     "ERROR",
			message:   "GET /api/v1 caf\u00e9 \ttab",
			rawTS:     "2025-10-26T14:00:00Z",
			timestamp: ts,
		},
		{
			name:      "json in other key order",
			line:      `{"msg":"disk full","severity":"critical","ts":"2025-10-26T14:00:00Z"}`,
			format:    FormatJSONObject,
			level:     "CRITICAL",
			message:   "disk full",
			rawTS:     "2025-10-26T14:00:00Z",
			timestamp: ts,
		},
		{
			name:      "syslog with pid",
			line:      "Oct 26 14:00:00 web01 app[1234]: ERROR disk full",
			format:    FormatSyslog,
			level:     "ERROR",
			message:   "disk full",
			rawTS:     "Oct 26 14:00:00",
			timestamp: ts,
		},
		{
			name:      "syslog without pid",
			line:      "Oct 26 14:00:00 web01 kernel: warn thermal throttling",
			format:    FormatSyslog,
			level:     "WARN",
			message:   "thermal throttling",
			rawTS:     "Oct 26 14:00:00",
			timestamp: ts,
		},
		{
			name:      "bare",
			line:      "2025-10-26 14:00:00 ERROR disk full",
			format:    FormatBare,
			level:     "ERROR",
			message:   "disk full",
			rawTS:     "2025-10-26 14:00:00",
			timestamp: ts,
		},
		{
			name:      "bare with millis",
			line:      "2025-10-26 14:00:00,500 INFO started",
			format:    FormatBare,
			level:     "INFO",
			message:   "started",
			rawTS:     "2025-10-26 14:00:00,500",
			timestamp: ts.Add(500 * time.Millisecond),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.Classify(tt.line)
			if rec.Format != tt.format {
				t.Errorf("Format = %q, want %q", rec.Format, tt.format)
			}
			if rec.Level != tt.level {
				t.Errorf("Level = %q, want %q", rec.Level, tt.level)
			}
			if rec.Message != tt.message {
				t.Errorf("Message = %q, want %q", rec.Message, tt.message)
			}
			if rec.RawTimestamp != tt.rawTS {
				t.Errorf("RawTimestamp = %q, want %q", rec.RawTimestamp, tt.rawTS)
			}
			if !rec.Timestamp.Equal(tt.timestamp) {
				t.Errorf("Timestamp = %v, want %v", rec.Timestamp, tt.timestamp)
			}
			if rec.Raw != tt.line {
				t.Errorf("Raw = %q, want original line", rec.Raw)
			}
		})
	}
}

func TestClassifier_Fallback(t *testing.T) {
	c := newTestClassifier()

	lines := []string{
		"",
		"   just some text   ",
		"Traceback (most recent call last):",
		"[2025-10-26 14:00:00] no level colon here",
		"2025-10-26 14:00:00",
		"{not json at all",
		`{"only":"fields"}`,
		`{"timestamp":"2025-10-26T14:00:00Z","level":"","message":"empty level"}`,
		"\tat com.example.Main(Main.java:10)",
	}

	for _, line := range lines {
		rec := c.Classify(line)
		if rec.Level != LevelInfo {
			t.Errorf("Classify(%q).Level = %q, want INFO", line, rec.Level)
		}
		if rec.Message != strings.TrimSpace(line) {
			t.Errorf("Classify(%q).Message = %q, want trimmed line", line, rec.Message)
		}
		if rec.RawTimestamp != "" || rec.HasTimestamp() {
			t.Errorf("Classify(%q) has timestamp %q/%v, want none", line, rec.RawTimestamp, rec.Timestamp)
		}
		if rec.Format != FormatUnstructured {
			t.Errorf("Classify(%q).Format = %q, want unstructured", line, rec.Format)
		}
	}
}

func TestClassifier_JSONBeforeBare(t *testing.T) {
	c := newTestClassifier()

	// The embedded date must not make this look like a bare line.
	line := `{"timestamp":"2025-10-26 14:00:00","level":"error","message":"2025-10-26 14:00:00 INFO nested"}`
	rec := c.Classify(line)
	if rec.Format != FormatJSON {
		t.Fatalf("Format = %q, want %q", rec.Format, FormatJSON)
	}
	if rec.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", rec.Level)
	}
}

func TestClassifier_AnchoredToLineStart(t *testing.T) {
	c := newTestClassifier()

	rec := c.Classify("prefix [2025-10-26 14:00:00] ERROR: disk full")
	if rec.Format != FormatUnstructured {
		t.Errorf("Format = %q, want unstructured for mid-line match", rec.Format)
	}
}

func TestClassifier_UnparsableTimestampKeepsRecord(t *testing.T) {
	c := newTestClassifier()

	rec := c.Classify(`{"timestamp":"not-a-time","level":"error","message":"boom"}`)
	if rec.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", rec.Level)
	}
	if rec.RawTimestamp != "not-a-time" {
		t.Errorf("RawTimestamp = %q, want not-a-time", rec.RawTimestamp)
	}
	if rec.HasTimestamp() {
		t.Errorf("Timestamp = %v, want none", rec.Timestamp)
	}
}

func TestClassifier_ClassifyLine(t *testing.T) {
	c := newTestClassifier()

	rec := c.ClassifyLine(&LogLine{Content: "2025-10-26 14:00:00 ERROR x", Source: "app.log", LineNum: 7})
	if rec.Source != "app.log" || rec.LineNum != 7 {
		t.Errorf("origin = %s:%d, want app.log:7", rec.Source, rec.LineNum)
	}
}

func TestDefaultLineFormats_ExamplesMatchOwnFormat(t *testing.T) {
	c := newTestClassifier()

	for _, f := range c.Formats() {
		rec := c.Classify(f.Example)
		if rec.Format != f.Name {
			t.Errorf("example for %s classified as %s", f.Name, rec.Format)
		}
	}
}

func TestLevelTiers(t *testing.T) {
	for _, l := range []string{"ERROR", "FATAL", "CRITICAL"} {
		if !IsErrorLevel(l) {
			t.Errorf("IsErrorLevel(%q) = false", l)
		}
	}
	for _, l := range []string{"WARN", "WARNING"} {
		if !IsWarningLevel(l) {
			t.Errorf("IsWarningLevel(%q) = false", l)
		}
	}
	for _, l := range []string{"INFO", "DEBUG", "ERR", "error"} {
		if IsErrorLevel(l) {
			t.Errorf("IsErrorLevel(%q) = true", l)
		}
	}
}
