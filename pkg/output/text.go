package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const timeLayout = "2006-01-02 15:04:05"

// TextFormatter formats reports as human-readable text. Styling is only
// emitted when the writer is a color-capable terminal.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// textStyles are bound to the renderer of one output writer.
type textStyles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	bar     lipgloss.Style
	count   lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	fatal   lipgloss.Style
	healthy lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:   r.NewStyle().Bold(true).Underline(true),
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		bar:     r.NewStyle().Foreground(lipgloss.Color("196")),
		count:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("220")),
		err:     r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		fatal: r.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true),
		healthy: r.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

func (s textStyles) level(level string) string {
	padded := fmt.Sprintf("%-8s", level)
	switch level {
	case "FATAL", "CRITICAL":
		return s.fatal.Render(padded)
	case "ERROR":
		return s.err.Render(padded)
	case "WARN", "WARNING":
		return s.warn.Render(padded)
	default:
		return s.muted.Render(padded)
	}
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, newTextStyles(w), w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	s := report.Summary
	if s.WarningsIncluded {
		_, err := fmt.Fprintf(w, "logtriage: %d lines, %d errors, %d warnings (%s)\n",
			s.TotalLines, s.ErrorCount, s.WarningCount, s.Severity)
		return err
	}
	_, err := fmt.Fprintf(w, "logtriage: %d lines, %d errors (%s)\n",
		s.TotalLines, s.ErrorCount, s.Severity)
	return err
}

func (f *TextFormatter) formatFull(report *Report, st textStyles, w io.Writer) error {
	b := &strings.Builder{}

	fmt.Fprintln(b, st.title.Render("Log Triage Report"))
	fmt.Fprintln(b)

	f.writeSummary(b, report, st)
	f.writeMessageTable(b, "Top Errors", report.TopErrors, st)
	if report.Summary.WarningsIncluded {
		f.writeMessageTable(b, "Top Warnings", report.TopWarnings, st)
	}
	f.writeHistogram(b, report.Hourly, st)
	f.writeTimeline(b, report.Timeline, st)
	f.writeRecommendations(b, report, st)

	if f.opts.Verbose {
		f.writeDetails(b, report, st)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TextFormatter) writeSummary(b *strings.Builder, report *Report, st textStyles) {
	s := report.Summary

	fmt.Fprintln(b, st.heading.Render("Summary"))
	fmt.Fprintf(b, "  Total lines:    %d\n", s.TotalLines)
	fmt.Fprintf(b, "  Matched lines:  %d\n", s.MatchedLines)
	fmt.Fprintf(b, "  Errors:         %s\n", st.count.Render(fmt.Sprint(s.ErrorCount)))
	if s.WarningsIncluded {
		fmt.Fprintf(b, "  Warnings:       %d\n", s.WarningCount)
	}
	if s.UniqueErrors > 0 {
		fmt.Fprintf(b, "  Unique errors:  %d\n", s.UniqueErrors)
	}
	if s.FirstSeen != nil && s.LastSeen != nil {
		fmt.Fprintf(b, "  Time span:      %s to %s\n",
			s.FirstSeen.Format(timeLayout), s.LastSeen.Format(timeLayout))
	}
	fmt.Fprintln(b)
}

func (f *TextFormatter) writeMessageTable(b *strings.Builder, title string, rows []MessageStat, st textStyles) {
	if len(rows) == 0 {
		return
	}

	fmt.Fprintln(b, st.heading.Render(title))
	for i, row := range rows {
		fmt.Fprintf(b, "  %2d. %s  %s\n", i+1, st.count.Render(fmt.Sprintf("%6d", row.Count)), row.Display)
	}
	fmt.Fprintln(b)
}

func (f *TextFormatter) writeHistogram(b *strings.Builder, bars []HourlyBar, st textStyles) {
	if len(bars) == 0 {
		return
	}

	fmt.Fprintln(b, st.heading.Render("Errors by Hour"))
	for _, bar := range bars {
		fmt.Fprintf(b, "  %s  %s %d\n",
			bar.Hour,
			st.bar.Render(fmt.Sprintf("%-*s", BarWidth, strings.Repeat("#", bar.Width))),
			bar.Count)
	}
	fmt.Fprintln(b)
}

func (f *TextFormatter) writeTimeline(b *strings.Builder, items []TimelineItem, st textStyles) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintln(b, st.heading.Render("Recent Errors"))
	for _, item := range items {
		fmt.Fprintf(b, "  %s  %s %s\n",
			item.Timestamp.UTC().Format(timeLayout),
			st.level(item.Level),
			Truncate(item.Message, DisplayWidth))
		if f.opts.Verbose && item.Source != "" {
			fmt.Fprintf(b, "    %s\n", st.muted.Render(fmt.Sprintf("%s:%d", item.Source, item.Line)))
		}
	}
	fmt.Fprintln(b)
}

func (f *TextFormatter) writeRecommendations(b *strings.Builder, report *Report, st textStyles) {
	fmt.Fprintln(b, st.heading.Render("Recommendations"))
	for _, rec := range report.Recommendations {
		line := "  - " + rec
		if report.Summary.Severity == SeverityHealthy {
			line = st.healthy.Render(line)
		}
		fmt.Fprintln(b, line)
	}
}

func (f *TextFormatter) writeDetails(b *strings.Builder, report *Report, st textStyles) {
	fmt.Fprintln(b)
	fmt.Fprintln(b, st.heading.Render("Details"))
	fmt.Fprintf(b, "  Run ID:    %s\n", report.RunID)
	if len(report.Metadata.Sources) > 0 {
		fmt.Fprintf(b, "  Sources:   %s\n", strings.Join(report.Metadata.Sources, ", "))
	}
	if report.Metadata.ConfigFile != "" {
		fmt.Fprintf(b, "  Config:    %s\n", report.Metadata.ConfigFile)
	}
	if report.Metadata.Pattern != "" {
		fmt.Fprintf(b, "  Pattern:   %s\n", report.Metadata.Pattern)
	}
	if tr := report.Metadata.TimeRange; tr != nil {
		fmt.Fprintf(b, "  Window:    %s to %s\n", boundString(tr.Start), boundString(tr.End))
	}
	fmt.Fprintf(b, "  Levels:    %s\n", countsString(report.Summary.LevelCounts))
	fmt.Fprintf(b, "  Formats:   %s\n", countsString(report.Summary.FormatCounts))
	fmt.Fprintf(b, "  Duration:  %s\n", report.Metadata.Duration.Round(time.Millisecond))
}

func boundString(t *time.Time) string {
	if t == nil {
		return "(open)"
	}
	return t.Format(timeLayout)
}

func countsString(counts map[string]int) string {
	if len(counts) == 0 {
		return "(none)"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
