package analyzer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logtriage/pkg/parser"
)

func errorRecord(msg string, ts time.Time) *parser.Record {
	return &parser.Record{Level: parser.LevelError, Message: msg, Timestamp: ts, Format: parser.FormatBare}
}

func TestCounter_TopStableTieBreak(t *testing.T) {
	c := NewCounter()
	for _, key := range []string{"A", "B", "C", "A", "B", "C", "A", "B", "A", "B", "A", "B"} {
		c.Add(key)
	}
	// A=5, B=5, C=2 inserted in order A, B, C
	top := c.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, MessageCount{Message: "A", Count: 5}, top[0])
	assert.Equal(t, MessageCount{Message: "B", Count: 5}, top[1])
}

func TestCounter_TopTieBreakFollowsFirstSeen(t *testing.T) {
	c := NewCounter()
	for _, key := range []string{"B", "A", "A", "B", "C"} {
		c.Add(key)
	}
	top := c.Top(0)
	require.Len(t, top, 3)
	assert.Equal(t, "B", top[0].Message)
	assert.Equal(t, "A", top[1].Message)
	assert.Equal(t, "C", top[2].Message)
	assert.Equal(t, []string{"B", "A", "C"}, c.Keys())
}

func TestRunStats_Accumulate(t *testing.T) {
	s := NewRunStats(false)
	ts := time.Date(2025, 10, 26, 14, 5, 0, 0, time.UTC)

	s.Accumulate(errorRecord("disk full", ts))
	s.Accumulate(errorRecord("disk full", ts.Add(time.Hour)))
	s.Accumulate(&parser.Record{Level: parser.LevelFatal, Message: "no timestamp"})
	s.Accumulate(&parser.Record{Level: parser.LevelWarn, Message: "slow", Timestamp: ts})
	s.Accumulate(&parser.Record{Level: parser.LevelInfo, Message: "ok", Timestamp: ts})

	assert.Equal(t, 5, s.MatchedLines)
	assert.Equal(t, 3, s.ErrorCount)
	assert.Equal(t, 0, s.WarningCount, "warnings are not counted unless included")
	assert.Equal(t, 2, s.MessageFrequency.Get("disk full"))
	assert.Equal(t, 1, s.MessageFrequency.Get("no timestamp"))
	assert.Equal(t, map[string]int{"2025-10-26 14:00": 1, "2025-10-26 15:00": 1}, s.HourlyErrorCounts)
	assert.Len(t, s.ErrorTimeline, 2, "errors without timestamps are kept out of the timeline")
	assert.Equal(t, ts, s.FirstSeen)
	assert.Equal(t, ts.Add(time.Hour), s.LastSeen)
	assert.Equal(t, 1, s.LevelCounts[parser.LevelWarn])
}

func TestRunStats_IncludeWarnings(t *testing.T) {
	s := NewRunStats(true)
	s.Accumulate(&parser.Record{Level: parser.LevelWarn, Message: "slow query"})
	s.Accumulate(&parser.Record{Level: parser.LevelWarning, Message: "slow query"})

	assert.Equal(t, 2, s.WarningCount)
	assert.Equal(t, 0, s.ErrorCount)
	assert.Equal(t, []MessageCount{{Message: "slow query", Count: 2}}, s.TopWarnings(10))
	assert.Empty(t, s.HourlyErrorCounts)
}

func TestRunStats_MessageKeyTruncation(t *testing.T) {
	s := NewRunStats(false)
	prefix := strings.Repeat("é", MessageKeyLength)
	s.Accumulate(errorRecord(prefix+" request 1", time.Time{}))
	s.Accumulate(errorRecord(prefix+" request 2", time.Time{}))

	top := s.TopErrors(10)
	require.Len(t, top, 1, "messages sharing the first 100 characters are grouped")
	assert.Equal(t, 2, top[0].Count)
	assert.Equal(t, MessageKeyLength, len([]rune(top[0].Message)))
}

func TestRunStats_PeakHourTieBreak(t *testing.T) {
	s := NewRunStats(false)
	s.HourlyErrorCounts["2025-10-26 15:00"] = 3
	s.HourlyErrorCounts["2025-10-26 14:00"] = 3
	s.HourlyErrorCounts["2025-10-26 13:00"] = 1

	peak, ok := s.PeakHour()
	require.True(t, ok)
	assert.Equal(t, HourCount{Hour: "2025-10-26 14:00", Count: 3}, peak)
}

func TestRunStats_PeakHourEmpty(t *testing.T) {
	_, ok := NewRunStats(false).PeakHour()
	assert.False(t, ok)
}

func TestRunStats_HourlyBucketsSorted(t *testing.T) {
	s := NewRunStats(false)
	s.HourlyErrorCounts["2025-10-27 01:00"] = 1
	s.HourlyErrorCounts["2025-10-26 23:00"] = 4
	s.HourlyErrorCounts["2025-10-26 09:00"] = 2

	assert.Equal(t, []HourCount{
		{Hour: "2025-10-26 09:00", Count: 2},
		{Hour: "2025-10-26 23:00", Count: 4},
		{Hour: "2025-10-27 01:00", Count: 1},
	}, s.HourlyBuckets())
}

func TestRunStats_RecentErrors(t *testing.T) {
	s := NewRunStats(false)
	base := time.Date(2025, 10, 26, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		s.Accumulate(errorRecord("e", base.Add(time.Duration(i)*time.Minute)))
	}

	recent := s.RecentErrors(TimelineLimit)
	require.Len(t, recent, TimelineLimit)
	assert.Equal(t, base.Add(29*time.Minute), recent[0].Timestamp)
	assert.Equal(t, base.Add(10*time.Minute), recent[TimelineLimit-1].Timestamp)
	assert.Len(t, s.ErrorTimeline, 30, "timeline is only cut when read")
}

func TestHourBucket(t *testing.T) {
	ts := time.Date(2025, 10, 26, 16, 59, 59, 0, time.FixedZone("CEST", 2*60*60))
	assert.Equal(t, "2025-10-26 14:00", HourBucket(ts))
}
