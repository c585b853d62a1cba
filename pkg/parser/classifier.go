package parser

import (
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// fields are the pieces a line format extracts from a matching line.
type fields struct {
	timestamp string
	level     string
	message   string
}

// extractFunc turns a pattern match into fields. Returning false rejects the
// line so the next format gets a chance.
type extractFunc func(line string, match []string) (fields, bool)

// LineFormat pairs an anchored pattern with the extraction for one log dialect.
type LineFormat struct {
	Name    string
	Pattern *regexp.Regexp
	Example string

	extract extractFunc
}

// DefaultLineFormats returns the recognized dialects, most specific first.
// Bracketed, syslog and bare lines are prefix-ambiguous, so the order matters.
func DefaultLineFormats() []*LineFormat {
	return []*LineFormat{
		{
			Name:    FormatJSON,
			Pattern: regexp.MustCompile(`^\s*\{.*?"timestamp"\s*:\s*"([^"]*)".*?"level"\s*:\s*"([^"]*)".*?"message"\s*:\s*"((?:[^"\\]|\\.)*)"`),
			Example: `{"timestamp":"2025-10-26T14:00:00Z","level":"error","message":"disk full"}`,
			extract: extractPositionalJSON,
		},
		{
			Name:    FormatJSONObject,
			Pattern: regexp.MustCompile(`^\s*\{`),
			Example: `{"msg":"disk full","severity":"error","ts":"2025-10-26T14:00:00Z"}`,
			extract: extractJSONObject,
		},
		{
			Name:    FormatBracketed,
			Pattern: regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d+)?)\]\s+(\w+):\s*(.*)$`),
			Example: "[2025-10-26 14:00:00] ERROR: disk full",
			extract: extractGroups,
		},
		{
			Name:    FormatSyslog,
			Pattern: regexp.MustCompile(`^([A-Z][a-z]{2}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})\s+\S+\s+[^\s:\[]+(?:\[\d+\])?:\s+(\w+):?(?:\s+(.*))?$`),
			Example: "Oct 26 14:00:00 web01 app[1234]: ERROR disk full",
			extract: extractGroups,
		},
		{
			Name:    FormatBare,
			Pattern: regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d+)?)\s+(\w+):?(?:\s+(.*))?$`),
			Example: "2025-10-26 14:00:00 ERROR disk full",
			extract: extractGroups,
		},
	}
}

// Classifier turns raw lines into records using an ordered list of line formats.
type Classifier struct {
	formats    []*LineFormat
	normalizer *Normalizer
}

// NewClassifier creates a Classifier with the default formats.
// A nil normalizer gets NewNormalizer().
func NewClassifier(normalizer *Normalizer) *Classifier {
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	return &Classifier{
		formats:    DefaultLineFormats(),
		normalizer: normalizer,
	}
}

// Formats returns the line formats in match order.
func (c *Classifier) Formats() []*LineFormat {
	return c.formats
}

// Classify returns the record for a single line. The first matching format
// wins; lines matching nothing become INFO records carrying the trimmed line.
func (c *Classifier) Classify(line string) Record {
	for _, f := range c.formats {
		match := f.Pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		fl, ok := f.extract(line, match)
		if !ok {
			continue
		}

		rec := Record{
			Raw:          line,
			RawTimestamp: strings.TrimSpace(fl.timestamp),
			Level:        strings.ToUpper(strings.TrimSpace(fl.level)),
			Message:      strings.TrimSpace(fl.message),
			Format:       f.Name,
		}
		if ts, ok := c.normalizer.Normalize(rec.RawTimestamp); ok {
			rec.Timestamp = ts
		}
		return rec
	}

	return Record{
		Raw:     line,
		Level:   LevelInfo,
		Message: strings.TrimSpace(line),
		Format:  FormatUnstructured,
	}
}

// ClassifyLine classifies a LogLine and carries over its origin.
func (c *Classifier) ClassifyLine(line *LogLine) Record {
	rec := c.Classify(line.Content)
	rec.Source = line.Source
	rec.LineNum = line.LineNum
	return rec
}

func extractGroups(_ string, match []string) (fields, bool) {
	return fields{timestamp: match[1], level: match[2], message: match[3]}, true
}

func extractPositionalJSON(_ string, match []string) (fields, bool) {
	if strings.TrimSpace(match[2]) == "" {
		return fields{}, false
	}
	msg := match[3]
	var unquoted string
	if err := json.Unmarshal([]byte(`"`+msg+`"`), &unquoted); err == nil {
		msg = unquoted
	}
	return fields{timestamp: match[1], level: match[2], message: msg}, true
}

var (
	jsonTimestampKeys = []string{"timestamp", "time", "ts", "@timestamp"}
	jsonLevelKeys     = []string{"level", "severity", "lvl"}
	jsonMessageKeys   = []string{"message", "msg"}
)

func extractJSONObject(line string, _ []string) (fields, bool) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return fields{}, false
	}

	level, ok := stringField(data, jsonLevelKeys...)
	if !ok {
		return fields{}, false
	}
	msg, ok := stringField(data, jsonMessageKeys...)
	if !ok {
		return fields{}, false
	}
	ts, _ := stringField(data, jsonTimestampKeys...)

	return fields{timestamp: ts, level: level, message: msg}, true
}

// stringField returns the first non-empty string value among keys.
func stringField(data map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := data[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
