// Package output builds analysis reports and renders them for people and machines.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/logtriage/pkg/analyzer"
)

const (
	// DisplayWidth is the longest message shown before truncation.
	DisplayWidth = 70

	// BarWidth is the width of the longest histogram bar.
	BarWidth = 40

	// DefaultTopN is used when ReportOptions.TopN is not positive.
	DefaultTopN = 10
)

// Report is the complete analysis output. Sections appear in field order.
type Report struct {
	// RunID uniquely identifies this analysis run.
	RunID string `json:"run_id"`

	Summary         Summary        `json:"summary"`
	TopErrors       []MessageStat  `json:"top_errors"`
	TopWarnings     []MessageStat  `json:"top_warnings,omitempty"`
	Hourly          []HourlyBar    `json:"hourly"`
	Timeline        []TimelineItem `json:"timeline"`
	Recommendations []string       `json:"recommendations"`

	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalLines   int `json:"total_lines"`
	MatchedLines int `json:"matched_lines"`
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	UniqueErrors int `json:"unique_errors"`

	// WarningsIncluded reports whether warnings were counted at all.
	WarningsIncluded bool `json:"warnings_included"`

	// Severity is the recommendation tier: healthy, low, investigate or urgent.
	Severity string `json:"severity"`

	FirstSeen *time.Time `json:"first_seen,omitempty"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`

	LevelCounts  map[string]int `json:"level_counts"`
	FormatCounts map[string]int `json:"format_counts"`
}

// MessageStat is one row of a top-N table.
type MessageStat struct {
	// Message is the grouping key (first 100 characters of the message).
	Message string `json:"message"`

	// Display is Message cut to DisplayWidth characters for tables.
	Display string `json:"display"`

	Count int `json:"count"`
}

// HourlyBar is one row of the hourly histogram.
type HourlyBar struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`

	// Width is the bar length, proportional to Count, at most BarWidth.
	Width int `json:"width"`
}

// TimelineItem is one recent error.
type TimelineItem struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source,omitempty"`
	Line      int       `json:"line,omitempty"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the inputs that were analyzed.
	Sources []string `json:"sources"`

	// TimeRange is the time filter that was applied, if any.
	TimeRange *TimeRange `json:"time_range,omitempty"`

	Pattern    string `json:"pattern,omitempty"`
	ErrorsOnly bool   `json:"errors_only"`
	TopN       int    `json:"top_n"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`
}

// TimeRange represents a time window for filtering.
type TimeRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// ReportOptions controls report construction.
type ReportOptions struct {
	// TopN is the number of rows in the top errors and warnings tables.
	TopN int

	// ConfigFile is recorded in the metadata.
	ConfigFile string
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, opts ReportOptions) *Report {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	stats := result.Stats

	report := &Report{
		RunID: uuid.NewString(),
		Summary: Summary{
			TotalLines:       stats.TotalLines,
			MatchedLines:     stats.MatchedLines,
			ErrorCount:       stats.ErrorCount,
			WarningCount:     stats.WarningCount,
			UniqueErrors:     stats.MessageFrequency.Len(),
			WarningsIncluded: stats.IncludeWarnings,
			Severity:         Severity(stats.ErrorCount),
			FirstSeen:        optionalTime(stats.FirstSeen),
			LastSeen:         optionalTime(stats.LastSeen),
			LevelCounts:      stats.LevelCounts,
			FormatCounts:     stats.FormatCounts,
		},
		TopErrors: messageStats(stats.TopErrors(opts.TopN)),
		Hourly:    hourlyBars(stats.HourlyBuckets()),
		Timeline:  timelineItems(stats.RecentErrors(analyzer.TimelineLimit)),
		Metadata: Metadata{
			ConfigFile: opts.ConfigFile,
			Sources:    result.Metadata.Sources,
			Pattern:    result.Metadata.Pattern,
			ErrorsOnly: result.Metadata.ErrorsOnly,
			TopN:       opts.TopN,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
	}

	if stats.IncludeWarnings {
		report.TopWarnings = messageStats(stats.TopWarnings(opts.TopN))
	}

	peak, hasPeak := stats.PeakHour()
	report.Recommendations = Recommend(stats.ErrorCount, peak, hasPeak)

	if result.Metadata.TimeRange != nil {
		report.Metadata.TimeRange = &TimeRange{
			Start: optionalTime(result.Metadata.TimeRange.Start),
			End:   optionalTime(result.Metadata.TimeRange.End),
		}
	}

	return report
}

// HasErrors returns true if any error-tier records were counted.
func (r *Report) HasErrors() bool {
	return r.Summary.ErrorCount > 0
}

// Truncate shortens s to width characters, marking the cut with "...".
func Truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width]) + "..."
}

// BarLength scales count against maxCount onto BarWidth cells. Non-zero
// counts always get at least one cell.
func BarLength(count, maxCount int) int {
	if count <= 0 || maxCount <= 0 {
		return 0
	}
	n := count * BarWidth / maxCount
	if n < 1 {
		n = 1
	}
	return n
}

func messageStats(counts []analyzer.MessageCount) []MessageStat {
	stats := make([]MessageStat, 0, len(counts))
	for _, c := range counts {
		stats = append(stats, MessageStat{
			Message: c.Message,
			Display: Truncate(c.Message, DisplayWidth),
			Count:   c.Count,
		})
	}
	return stats
}

func hourlyBars(buckets []analyzer.HourCount) []HourlyBar {
	maxCount := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	bars := make([]HourlyBar, 0, len(buckets))
	for _, b := range buckets {
		bars = append(bars, HourlyBar{
			Hour:  b.Hour,
			Count: b.Count,
			Width: BarLength(b.Count, maxCount),
		})
	}
	return bars
}

func timelineItems(entries []analyzer.TimelineEntry) []TimelineItem {
	items := make([]TimelineItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, TimelineItem{
			Timestamp: e.Timestamp,
			Level:     e.Level,
			Message:   e.Message,
			Source:    e.Source,
			Line:      e.LineNum,
		})
	}
	return items
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
