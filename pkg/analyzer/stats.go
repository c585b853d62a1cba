package analyzer

import (
	"sort"
	"time"

	"github.com/ccollicutt/logtriage/pkg/parser"
)

// RunStats holds the statistics of one analysis run. It is created empty,
// mutated once per line by the analyzer and read-only afterwards.
type RunStats struct {
	// TotalLines counts every line read, before filtering.
	TotalLines int

	// MatchedLines counts records that passed the filter.
	MatchedLines int

	// ErrorCount and WarningCount count filtered records per tier.
	// Warnings are only counted when IncludeWarnings is set.
	ErrorCount   int
	WarningCount int

	// IncludeWarnings records whether warning-tier records were tracked.
	IncludeWarnings bool

	// MessageFrequency counts error message keys in first-seen order.
	MessageFrequency *Counter

	// WarningFrequency counts warning message keys when IncludeWarnings is set.
	WarningFrequency *Counter

	// HourlyErrorCounts maps an hour bucket to its error count.
	HourlyErrorCounts map[string]int

	// ErrorTimeline holds every timestamped error, in input order.
	ErrorTimeline []TimelineEntry

	// LevelCounts counts filtered records per level.
	LevelCounts map[string]int

	// FormatCounts counts every classified line per format.
	FormatCounts map[string]int

	// FirstSeen and LastSeen bound the timestamps of filtered records.
	FirstSeen time.Time
	LastSeen  time.Time
}

// NewRunStats returns empty statistics.
func NewRunStats(includeWarnings bool) *RunStats {
	return &RunStats{
		IncludeWarnings:   includeWarnings,
		MessageFrequency:  NewCounter(),
		WarningFrequency:  NewCounter(),
		HourlyErrorCounts: make(map[string]int),
		LevelCounts:       make(map[string]int),
		FormatCounts:      make(map[string]int),
	}
}

// Observe records a classified line before filtering.
func (s *RunStats) Observe(rec *parser.Record) {
	s.TotalLines++
	s.FormatCounts[rec.Format]++
}

// Accumulate folds a record that passed the filter into the statistics.
func (s *RunStats) Accumulate(rec *parser.Record) {
	s.MatchedLines++
	s.LevelCounts[rec.Level]++

	if rec.HasTimestamp() {
		if s.FirstSeen.IsZero() || rec.Timestamp.Before(s.FirstSeen) {
			s.FirstSeen = rec.Timestamp
		}
		if rec.Timestamp.After(s.LastSeen) {
			s.LastSeen = rec.Timestamp
		}
	}

	switch {
	case rec.IsError():
		s.ErrorCount++
		s.MessageFrequency.Add(MessageKey(rec.Message))

		if rec.HasTimestamp() {
			s.HourlyErrorCounts[HourBucket(rec.Timestamp)]++
			s.ErrorTimeline = append(s.ErrorTimeline, TimelineEntry{
				Timestamp: rec.Timestamp,
				Level:     rec.Level,
				Message:   rec.Message,
				Source:    rec.Source,
				LineNum:   rec.LineNum,
			})
		}

	case rec.IsWarning() && s.IncludeWarnings:
		s.WarningCount++
		s.WarningFrequency.Add(MessageKey(rec.Message))
	}
}

// TopErrors returns the n most frequent error message keys.
func (s *RunStats) TopErrors(n int) []MessageCount {
	return s.MessageFrequency.Top(n)
}

// TopWarnings returns the n most frequent warning message keys.
func (s *RunStats) TopWarnings(n int) []MessageCount {
	return s.WarningFrequency.Top(n)
}

// HourlyBuckets returns the hourly error counts sorted by hour ascending.
func (s *RunStats) HourlyBuckets() []HourCount {
	buckets := make([]HourCount, 0, len(s.HourlyErrorCounts))
	for hour, count := range s.HourlyErrorCounts {
		buckets = append(buckets, HourCount{Hour: hour, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Hour < buckets[j].Hour
	})
	return buckets
}

// PeakHour returns the bucket with the most errors. Ties go to the earliest
// hour. ok is false when there are no buckets.
func (s *RunStats) PeakHour() (peak HourCount, ok bool) {
	for _, b := range s.HourlyBuckets() {
		if !ok || b.Count > peak.Count {
			peak, ok = b, true
		}
	}
	return peak, ok
}

// RecentErrors returns up to n timeline entries, newest first.
// Entries with equal timestamps keep input order.
func (s *RunStats) RecentErrors(n int) []TimelineEntry {
	recent := make([]TimelineEntry, len(s.ErrorTimeline))
	copy(recent, s.ErrorTimeline)

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})

	if n > 0 && len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

// MessageKey truncates a message to MessageKeyLength characters.
func MessageKey(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MessageKeyLength {
		return msg
	}
	return string(runes[:MessageKeyLength])
}

// HourBucket returns the UTC hour bucket key for t.
func HourBucket(t time.Time) string {
	return t.UTC().Format(HourLayout)
}
