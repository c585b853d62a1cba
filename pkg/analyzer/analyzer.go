package analyzer

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/parser"
)

// Analyzer runs the classify, filter, aggregate pipeline over a log source.
type Analyzer struct {
	classifier      *parser.Classifier
	filter          Filter
	includeWarnings bool
	logger          *zap.Logger
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithTimeRange limits analysis to records within [start, end].
// A zero bound leaves that side open.
func WithTimeRange(start, end time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.filter.TimeRange = TimeRange{Start: start, End: end}
	}
}

// WithPattern keeps only records whose message matches re.
func WithPattern(re *regexp.Regexp) AnalyzerOption {
	return func(a *Analyzer) {
		a.filter.Pattern = re
	}
}

// WithErrorsOnly keeps only error-tier records.
func WithErrorsOnly(v bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.filter.ErrorsOnly = v
	}
}

// WithIncludeWarnings additionally counts warning-tier records.
func WithIncludeWarnings(v bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.includeWarnings = v
	}
}

// WithClassifier replaces the line classifier.
func WithClassifier(c *parser.Classifier) AnalyzerOption {
	return func(a *Analyzer) {
		if c != nil {
			a.classifier = c
		}
	}
}

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(l *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnalyzer creates a new analyzer from configuration. Options are applied
// after the configuration and override it. A nil cfg means defaults.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &Analyzer{
		classifier: parser.NewClassifier(parser.NewNormalizer(parser.WithSyslogYear(cfg.SyslogYear))),
		filter: Filter{
			TimeRange:  TimeRange{Start: cfg.SinceTime(), End: cfg.UntilTime()},
			Pattern:    cfg.CompiledPattern(),
			ErrorsOnly: cfg.ErrorsOnly,
		},
		includeWarnings: cfg.IncludeWarnings,
		logger:          zap.NewNop(),
	}

	// Apply options
	for _, opt := range opts {
		opt(a)
	}

	tr := a.filter.TimeRange
	if !tr.Start.IsZero() && !tr.End.IsZero() && tr.Start.After(tr.End) {
		return nil, fmt.Errorf("time range start %s is after end %s",
			tr.Start.Format(time.RFC3339), tr.End.Format(time.RFC3339))
	}

	return a, nil
}

// Filter returns the active record filter.
func (a *Analyzer) Filter() Filter {
	return a.filter
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// Stats holds the aggregated statistics.
	Stats *RunStats

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Sources lists the inputs that were analyzed, in reading order.
	Sources []string

	// TimeRange is the time filter applied, if any.
	TimeRange *TimeRange

	// Pattern is the message filter applied, if any.
	Pattern string

	// ErrorsOnly reports whether non-error records were filtered out.
	ErrorsOnly bool

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time
}

// Analyze reads source to exhaustion and returns the aggregated statistics.
// Only read failures are returned as errors; unrecognized lines and
// unparsable timestamps are part of normal operation.
func (a *Analyzer) Analyze(ctx context.Context, source parser.LogSource) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Stats: NewRunStats(a.includeWarnings),
		Metadata: AnalysisMetadata{
			ErrorsOnly: a.filter.ErrorsOnly,
			StartTime:  time.Now(),
		},
	}
	if !a.filter.TimeRange.IsZero() {
		tr := a.filter.TimeRange
		result.Metadata.TimeRange = &tr
	}
	if a.filter.Pattern != nil {
		result.Metadata.Pattern = a.filter.Pattern.String()
	}

	stats := result.Stats
	sourcesMap := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading log source: %w", err)
		}

		if !sourcesMap[line.Source] {
			sourcesMap[line.Source] = true
			result.Metadata.Sources = append(result.Metadata.Sources, line.Source)
			a.logger.Debug("reading source", zap.String("source", line.Source))
		}

		rec := a.classifier.ClassifyLine(line)
		stats.Observe(&rec)

		if !a.filter.Passes(&rec) {
			continue
		}
		stats.Accumulate(&rec)
	}

	result.Metadata.EndTime = time.Now()

	a.logger.Info("analysis complete",
		zap.Int("lines", stats.TotalLines),
		zap.Int("matched", stats.MatchedLines),
		zap.Int("errors", stats.ErrorCount),
		zap.Int("warnings", stats.WarningCount),
		zap.Duration("elapsed", result.Metadata.EndTime.Sub(result.Metadata.StartTime)),
	)

	return result, nil
}
