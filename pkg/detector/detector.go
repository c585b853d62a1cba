// Package detector reports which log line formats a file uses.
package detector

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/logtriage/pkg/parser"
)

// DefaultSampleSize is the number of lines read from the head of a file.
const DefaultSampleSize = 100

// DetectionResult holds the result of sampling a log file.
type DetectionResult struct {
	Matches           []FormatMatch // Formats that matched, sorted by confidence descending
	SampledLines      int           // Number of non-blank lines sampled
	StructuredLines   int           // Lines matched by any format
	TimestampedLines  int           // Lines whose timestamp normalized
	UnstructuredLines int           // Lines that fell back to INFO
	UnstructuredLine  string        // Example fallback line
	Note              string        // Warning about the top match, if any
}

// FormatMatch is one line format with its share of the sample.
type FormatMatch struct {
	Format         *parser.LineFormat
	Confidence     float64 // 0.0 to 1.0 (share of sampled lines)
	MatchCount     int
	TimestampCount int // Matches whose timestamp normalized
	Levels         map[string]int
	SampleLine     string
	ParsedTime     time.Time // Timestamp from the first sample that had one
}

// Detector samples log lines and classifies them.
type Detector struct {
	classifier *parser.Classifier
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithClassifier replaces the default classifier, e.g. to pin the syslog year.
func WithClassifier(c *parser.Classifier) Option {
	return func(d *Detector) {
		if c != nil {
			d.classifier = c
		}
	}
}

// New creates a new Detector with the default classifier.
func New(opts ...Option) *Detector {
	d := &Detector{
		classifier: parser.NewClassifier(nil),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a log file (plain, gzip or zstd) and classifies it.
// Missing or unreadable files return errors wrapping the parser sentinels.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines classifies a slice of log lines. Blank lines are ignored.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}

	stats := make(map[string]*FormatMatch)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.SampledLines++

		rec := d.classifier.Classify(line)
		if rec.Format == parser.FormatUnstructured {
			result.UnstructuredLines++
			if result.UnstructuredLine == "" {
				result.UnstructuredLine = line
			}
			continue
		}

		result.StructuredLines++
		m := stats[rec.Format]
		if m == nil {
			m = &FormatMatch{
				Format:     d.lookup(rec.Format),
				SampleLine: line,
				Levels:     make(map[string]int),
			}
			stats[rec.Format] = m
		}
		m.MatchCount++
		m.Levels[rec.Level]++
		if rec.HasTimestamp() {
			result.TimestampedLines++
			m.TimestampCount++
			if m.ParsedTime.IsZero() {
				m.ParsedTime = rec.Timestamp
			}
		}
	}

	if result.SampledLines == 0 {
		return result
	}

	for _, m := range stats {
		m.Confidence = float64(m.MatchCount) / float64(result.SampledLines)
		result.Matches = append(result.Matches, *m)
	}

	// Ties go to the format that is tried first by the classifier.
	order := d.formatOrder()
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].MatchCount != result.Matches[j].MatchCount {
			return result.Matches[i].MatchCount > result.Matches[j].MatchCount
		}
		return order[result.Matches[i].Format.Name] < order[result.Matches[j].Format.Name]
	})

	if best := result.BestMatch(); best != nil {
		switch {
		case best.TimestampCount < best.MatchCount:
			result.Note = fmt.Sprintf("%d of %d %s lines have timestamps that could not be normalized; "+
				"they are always kept by --since/--until", best.MatchCount-best.TimestampCount, best.MatchCount, best.Format.Name)
		case best.Format.Name == parser.FormatSyslog:
			result.Note = "Syslog timestamps carry no year. Set syslog_year in the config " +
				"or pass --syslog-year if the log is not from the last twelve months."
		}
	}

	return result
}

func (d *Detector) lookup(name string) *parser.LineFormat {
	for _, f := range d.classifier.Formats() {
		if f.Name == name {
			return f
		}
	}
	return &parser.LineFormat{Name: name}
}

func (d *Detector) formatOrder() map[string]int {
	order := make(map[string]int)
	for i, f := range d.classifier.Formats() {
		order[f.Name] = i
	}
	return order
}

// sampleFile reads up to sampleSize non-blank lines from the head of a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	file, err := parser.OpenLogFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	source := parser.NewReaderSource(file, path)
	var lines []string
	for len(lines) < d.sampleSize {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if strings.TrimSpace(line.Content) != "" {
			lines = append(lines, line.Content)
		}
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// Coverage returns the share of sampled lines matched by any format.
func (r *DetectionResult) Coverage() float64 {
	if r.SampledLines == 0 {
		return 0
	}
	return float64(r.StructuredLines) / float64(r.SampledLines)
}
