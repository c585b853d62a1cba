package output

import (
	"context"
	"io"

	"github.com/goccy/go-json"
)

// Brief is the quiet-mode record: one line per run, suited to log shipping.
type Brief struct {
	RunID        string `json:"run_id"`
	TotalLines   int    `json:"total_lines"`
	ErrorCount   int    `json:"error_count"`
	WarningCount int    `json:"warning_count,omitempty"`
	Severity     string `json:"severity"`
}

// NewBrief condenses a report for quiet output.
func NewBrief(report *Report) Brief {
	return Brief{
		RunID:        report.RunID,
		TotalLines:   report.Summary.TotalLines,
		ErrorCount:   report.Summary.ErrorCount,
		WarningCount: report.Summary.WarningCount,
		Severity:     report.Summary.Severity,
	}
}

// JSONFormatter writes the report as indented JSON, or a single-line Brief
// when quiet.
type JSONFormatter struct {
	opts FormatOptions
}

func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	if f.opts.Quiet {
		return enc.EncodeContext(ctx, NewBrief(report))
	}
	enc.SetIndent("", "  ")
	return enc.EncodeContext(ctx, report)
}
