package analyzer

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/parser"
)

// mockSource is a test LogSource that returns predefined lines.
type mockSource struct {
	lines []*parser.LogLine
	index int
	err   error
}

func newMockSource(text string) *mockSource {
	m := &mockSource{}
	for i, l := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		m.lines = append(m.lines, &parser.LogLine{Content: l, Source: "test.log", LineNum: i + 1})
	}
	return m
}

func (m *mockSource) Next(ctx context.Context) (*parser.LogLine, error) {
	if m.index >= len(m.lines) {
		if m.err != nil {
			return nil, m.err
		}
		return nil, io.EOF
	}
	line := m.lines[m.index]
	m.index++
	return line, nil
}

func (m *mockSource) Close() error {
	return nil
}

const twelveLines = `[2025-10-26 14:00:00] INFO: service started
[2025-10-26 14:05:00] ERROR: database connection refused
[2025-10-26 14:06:00] INFO: retrying
[2025-10-26 14:07:00] WARN: slow response
random unstructured text
[2025-10-26 14:30:00] INFO: request served
[2025-10-26 15:10:00] ERROR: database connection refused
[2025-10-26 15:11:00] INFO: recovered
[2025-10-26 15:20:00] DEBUG: cache stats
[2025-10-26 15:25:00] ERROR: disk quota exceeded
[2025-10-26 15:30:00] INFO: shutting down

`

func TestNewAnalyzer(t *testing.T) {
	a, err := NewAnalyzer(nil)
	require.NoError(t, err)
	require.NotNil(t, a)

	f := a.Filter()
	assert.True(t, f.TimeRange.IsZero())
	assert.Nil(t, f.Pattern)
	assert.False(t, f.ErrorsOnly)
}

func TestNewAnalyzer_FromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ErrorsOnly = true
	cfg.Pattern = "disk"
	cfg.Since = "2025-10-26 14:00"

	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	f := a.Filter()
	assert.True(t, f.ErrorsOnly)
	require.NotNil(t, f.Pattern)
	assert.True(t, f.Pattern.MatchString("DISK"))
	assert.Equal(t, time.Date(2025, 10, 26, 14, 0, 0, 0, time.UTC), f.TimeRange.Start)
}

func TestNewAnalyzer_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Pattern = "(["

	_, err := NewAnalyzer(cfg)
	assert.Error(t, err)
}

func TestNewAnalyzer_InvertedTimeRange(t *testing.T) {
	now := time.Now()
	_, err := NewAnalyzer(nil, WithTimeRange(now, now.Add(-time.Hour)))
	assert.Error(t, err)
}

func TestAnalyzer_EndToEnd(t *testing.T) {
	a, err := NewAnalyzer(nil)
	require.NoError(t, err)

	result, err := a.Analyze(context.Background(), newMockSource(twelveLines))
	require.NoError(t, err)

	stats := result.Stats
	assert.Equal(t, 12, stats.TotalLines)
	assert.Equal(t, 3, stats.ErrorCount)
	assert.Len(t, stats.HourlyBuckets(), 2)
	assert.Equal(t, []MessageCount{
		{Message: "database connection refused", Count: 2},
		{Message: "disk quota exceeded", Count: 1},
	}, stats.TopErrors(10))
	assert.Equal(t, 0, stats.WarningCount)
	assert.Equal(t, 2, stats.FormatCounts[parser.FormatUnstructured])
	assert.Equal(t, []string{"test.log"}, result.Metadata.Sources)
	assert.Nil(t, result.Metadata.TimeRange)
}

func TestAnalyzer_Idempotent(t *testing.T) {
	a, err := NewAnalyzer(nil, WithIncludeWarnings(true))
	require.NoError(t, err)

	first, err := a.Analyze(context.Background(), newMockSource(twelveLines))
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), newMockSource(twelveLines))
	require.NoError(t, err)

	assert.Equal(t, first.Stats, second.Stats)
}

func TestAnalyzer_ErrorsOnly(t *testing.T) {
	a, err := NewAnalyzer(nil, WithErrorsOnly(true), WithIncludeWarnings(true))
	require.NoError(t, err)

	result, err := a.Analyze(context.Background(), newMockSource(twelveLines))
	require.NoError(t, err)

	assert.Equal(t, 12, result.Stats.TotalLines, "total counts lines before filtering")
	assert.Equal(t, 3, result.Stats.MatchedLines)
	assert.Equal(t, 0, result.Stats.WarningCount)
	assert.True(t, result.Metadata.ErrorsOnly)
}

func TestAnalyzer_TimeRangeAndPattern(t *testing.T) {
	a, err := NewAnalyzer(nil,
		WithTimeRange(
			time.Date(2025, 10, 26, 15, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 26, 15, 25, 0, 0, time.UTC),
		),
		WithPattern(regexp.MustCompile("(?i)DISK|database")),
	)
	require.NoError(t, err)

	result, err := a.Analyze(context.Background(), newMockSource(twelveLines))
	require.NoError(t, err)

	// 15:10 and 15:25 (inclusive upper bound) errors remain.
	assert.Equal(t, 2, result.Stats.ErrorCount)
	assert.Equal(t, map[string]int{"2025-10-26 15:00": 2}, result.Stats.HourlyErrorCounts)
	require.NotNil(t, result.Metadata.TimeRange)
	assert.NotEmpty(t, result.Metadata.Pattern)
}

func TestAnalyzer_UnstructuredOnly(t *testing.T) {
	a, err := NewAnalyzer(nil)
	require.NoError(t, err)

	result, err := a.Analyze(context.Background(), newMockSource("just text\nmore text\nerror happened here\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.TotalLines)
	assert.Equal(t, 0, result.Stats.ErrorCount)
	assert.Empty(t, result.Stats.HourlyErrorCounts)
	assert.Empty(t, result.Stats.ErrorTimeline)
	assert.Equal(t, 3, result.Stats.LevelCounts[parser.LevelInfo])
}

func TestAnalyzer_OversizeLineKeepsStats(t *testing.T) {
	a, err := NewAnalyzer(nil)
	require.NoError(t, err)

	input := "[2025-10-26 14:00:00] ERROR: disk full\n" +
		"[2025-10-26 14:00:01] ERROR: " + strings.Repeat("x", 2*parser.MaxLineSize) + "\n" +
		"[2025-10-26 14:00:02] ERROR: disk full\n"

	result, err := a.Analyze(context.Background(), parser.NewReaderSource(strings.NewReader(input), "big.log"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.TotalLines)
	assert.Equal(t, 3, result.Stats.ErrorCount)
	top := result.Stats.TopErrors(1)
	require.Len(t, top, 1)
	assert.Equal(t, MessageCount{Message: "disk full", Count: 2}, top[0])
}

func TestAnalyzer_SourceError(t *testing.T) {
	a, err := NewAnalyzer(nil)
	require.NoError(t, err)

	src := newMockSource("one line")
	src.err = errors.New("disk read failure")

	_, err = a.Analyze(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk read failure")
}

func TestAnalyzer_ContextCanceled(t *testing.T) {
	a, err := NewAnalyzer(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Analyze(ctx, newMockSource(twelveLines))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzer_SyslogYearFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SyslogYear = 2023

	a, err := NewAnalyzer(cfg)
	require.NoError(t, err)

	result, err := a.Analyze(context.Background(), newMockSource("Dec 31 23:59:00 host app[1]: ERROR year end\n"))
	require.NoError(t, err)

	require.Len(t, result.Stats.ErrorTimeline, 1)
	assert.Equal(t, 2023, result.Stats.ErrorTimeline[0].Timestamp.Year())
}
