package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/detector"
	"github.com/ccollicutt/logtriage/pkg/parser"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	List        bool
	SyslogYear  int
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect which line formats a log file uses",
		Long: `Sample lines from a log file and report which recognized line formats
they match, with a confidence score per format.

Lines that match no format are counted as INFO during analysis; a low
coverage here means most of the file will not contribute errors.

Optionally generates a starter config file with --write-config.

Example:
  logtriage detect /var/log/myapp.log
  logtriage detect --sample 500 --all /var/log/large.log.gz
  logtriage detect --list
  logtriage detect -w .logtriage.yaml /var/log/app.log`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.List {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().BoolVar(&opts.List, "list", false, "List the recognized formats and exit")
	cmd.Flags().IntVar(&opts.SyslogYear, "syslog-year", 0, "Year assumed for syslog timestamps")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	classifier := parser.NewClassifier(parser.NewNormalizer(parser.WithSyslogYear(opts.SyslogYear)))
	d := detector.New(detector.WithSampleSize(opts.SampleSize), detector.WithClassifier(classifier))

	if opts.List {
		return outputFormatList(out, d.Catalog(), opts)
	}

	logFile := args[0]
	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(out, result, logFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(out, result, logFile, opts)
	case "text":
		return outputDetectText(out, result, logFile, opts)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputFormatList(w io.Writer, catalog []detector.FormatInfo, opts *DetectOptions) error {
	if opts.Output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	}

	fmt.Fprintln(w, "=== Recognized Line Formats ===")
	fmt.Fprintln(w)
	for i, f := range catalog {
		fmt.Fprintf(w, "%d. %s\n", i+1, f.Name)
		fmt.Fprintf(w, "   example: %s\n", f.Example)
	}
	return nil
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Line Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines recognized: %d (%.1f%%)\n", result.StructuredLines, result.Coverage()*100)
	fmt.Fprintf(w, "Lines with timestamps: %d\n", result.TimestampedLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No known line format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Every line will be counted as INFO, so no errors can be reported.")
		if result.UnstructuredLine != "" {
			fmt.Fprintf(w, "First line:\n  %s\n", result.UnstructuredLine)
		}
		fmt.Fprintln(w, "Run 'logtriage detect --list' to see the supported formats.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines matched)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintf(w, "Levels: %s\n", levelSummary(best.Levels))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	if !best.ParsedTime.IsZero() {
		fmt.Fprintf(w, "Parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintln(w)

	if result.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", result.Note)
		fmt.Fprintln(w)
	}

	if result.UnstructuredLines > 0 {
		fmt.Fprintf(w, "Unrecognized lines: %d (counted as INFO)\n", result.UnstructuredLines)
		fmt.Fprintf(w, "  e.g. %s\n", result.UnstructuredLine)
		fmt.Fprintln(w)
	}

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other formats detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Format.Name, m.Confidence*100)
			fmt.Fprintf(w, "   sample: %s\n", m.SampleLine)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name           string         `json:"name"`
	Pattern        string         `json:"pattern"`
	Confidence     float64        `json:"confidence"`
	MatchCount     int            `json:"match_count"`
	TimestampCount int            `json:"timestamp_count"`
	Levels         map[string]int `json:"levels"`
	SampleLine     string         `json:"sample_line"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File              string      `json:"file"`
	Matches           []JSONMatch `json:"matches"`
	SampledLines      int         `json:"sampled_lines"`
	StructuredLines   int         `json:"structured_lines"`
	TimestampedLines  int         `json:"timestamped_lines"`
	UnstructuredLines int         `json:"unstructured_lines"`
	Note              string      `json:"note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:              logFile,
		SampledLines:      result.SampledLines,
		StructuredLines:   result.StructuredLines,
		TimestampedLines:  result.TimestampedLines,
		UnstructuredLines: result.UnstructuredLines,
		Note:              result.Note,
		Matches:           make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		jm := JSONMatch{
			Name:           m.Format.Name,
			Confidence:     m.Confidence,
			MatchCount:     m.MatchCount,
			TimestampCount: m.TimestampCount,
			Levels:         m.Levels,
			SampleLine:     m.SampleLine,
		}
		if m.Format.Pattern != nil {
			jm.Pattern = m.Format.Pattern.String()
		}
		out.Matches = append(out.Matches, jm)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig generates a starter config file for the detected format.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, logFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no known line format detected")
	}

	content, err := generateStarterConfig(logFile, result.BestMatch())
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig renders a YAML config suited to the detected format.
func generateStarterConfig(logFile string, match *detector.FormatMatch) (string, error) {
	absLogFile := logFile
	if abs, err := filepath.Abs(logFile); err == nil {
		absLogFile = abs
	}

	cfg := config.DefaultConfig()
	if match.Levels["WARN"]+match.Levels["WARNING"] > 0 {
		cfg.IncludeWarnings = true
	}
	if match.Format.Name == parser.FormatSyslog && !match.ParsedTime.IsZero() {
		cfg.SyslogYear = match.ParsedTime.Year()
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("rendering config: %w", err)
	}

	var b strings.Builder
	b.WriteString("# logtriage configuration\n")
	b.WriteString("# Generated by: logtriage detect\n")
	fmt.Fprintf(&b, "# Detected format: %s (%.0f%% confidence)\n", match.Format.Name, match.Confidence*100)
	fmt.Fprintf(&b, "# Analyze with: logtriage analyze --config <this file> %s\n", absLogFile)
	b.WriteString("#\n")
	b.WriteString("# Optional filters:\n")
	b.WriteString("#   since: \"2025-10-26 14:00\"\n")
	b.WriteString("#   pattern: 'timeout|refused'\n")
	b.WriteString("#   errors_only: true\n")
	b.WriteString("# Webhooks:\n")
	b.WriteString("#   webhooks:\n")
	b.WriteString("#     - name: alerts\n")
	b.WriteString("#       url: https://hooks.example.com/logtriage\n")
	b.WriteString("#       token: ${LOGTRIAGE_WEBHOOK_TOKEN}\n")
	b.WriteString("#       trigger: on_errors\n")
	b.WriteString("\n")
	b.Write(body)
	return b.String(), nil
}

func levelSummary(levels map[string]int) string {
	keys := make([]string, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, levels[k]))
	}
	return strings.Join(parts, " ")
}
