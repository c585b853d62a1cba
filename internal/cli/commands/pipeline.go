package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/logtriage/pkg/analyzer"
	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/output"
	"github.com/ccollicutt/logtriage/pkg/parser"
	"github.com/ccollicutt/logtriage/pkg/webhook"
)

// AnalysisFlags are the analysis options shared by analyze and watch.
// Flags given on the command line override the config file.
type AnalysisFlags struct {
	ErrorsOnly      bool
	IncludeWarnings bool
	Since           string
	Until           string
	Pattern         string
	Top             int
	Output          string
	SyslogYear      int
	Verbose         bool
	Quiet           bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

func (f *AnalysisFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVar(&f.ErrorsOnly, "errors-only", false, "Only analyze ERROR/FATAL/CRITICAL records")
	flags.BoolVar(&f.IncludeWarnings, "include-warnings", false, "Also count and report WARN/WARNING records")
	flags.StringVar(&f.Since, "since", "", "Ignore records before this time (e.g. \"2025-10-26 14:00\")")
	flags.StringVar(&f.Until, "until", "", "Ignore records after this time (e.g. \"2025-10-26 15:00\")")
	flags.StringVar(&f.Pattern, "pattern", "", "Only analyze records whose message matches this regex (case-insensitive)")
	flags.IntVar(&f.Top, "top", config.DefaultTopN, "Number of recurring messages to list")
	flags.StringVarP(&f.Output, "output", "o", config.DefaultOutput, "Output format (text|json|msgpack)")
	flags.IntVar(&f.SyslogYear, "syslog-year", 0, "Year assumed for syslog timestamps (default: infer from today)")
	flags.BoolVarP(&f.Verbose, "verbose", "v", false, "Show run details")
	flags.BoolVarP(&f.Quiet, "quiet", "q", false, "Summary only, no details")

	flags.StringVar(&f.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	flags.StringVar(&f.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	flags.StringVar(&f.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnErrors), "When to fire webhook (on_errors|always|never)")
}

// apply copies explicitly set flags over cfg, adds the CLI webhook and
// validates the result.
func (f *AnalysisFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("errors-only") {
		cfg.ErrorsOnly = f.ErrorsOnly
	}
	if changed("include-warnings") {
		cfg.IncludeWarnings = f.IncludeWarnings
	}
	if changed("since") {
		cfg.Since = f.Since
	}
	if changed("until") {
		cfg.Until = f.Until
	}
	if changed("pattern") {
		cfg.Pattern = f.Pattern
	}
	if changed("top") {
		cfg.TopN = f.Top
	}
	if changed("output") {
		cfg.Output = f.Output
	}
	if changed("syslog-year") {
		cfg.SyslogYear = f.SyslogYear
	}

	if f.WebhookURL != "" {
		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     f.WebhookURL,
			Token:   config.ExpandEnvVar(f.WebhookToken),
			Trigger: config.WebhookTrigger(f.WebhookTrigger),
		})
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func (f *AnalysisFlags) formatOptions() output.FormatOptions {
	return output.FormatOptions{
		Verbose: f.Verbose,
		Quiet:   f.Quiet,
	}
}

// pipeline runs one analysis: source to report, formatted output, webhooks.
type pipeline struct {
	cfg        *config.Config
	configFile string
	format     output.FormatOptions
	logger     *zap.Logger
	webhooks   *webhook.Client
}

func newPipeline(cfg *config.Config, configFile string, format output.FormatOptions, logger *zap.Logger) *pipeline {
	return &pipeline{
		cfg:        cfg,
		configFile: configFile,
		format:     format,
		logger:     logger,
		webhooks:   webhook.NewClient(),
	}
}

// run analyzes source with fresh statistics and writes the report to w.
func (p *pipeline) run(ctx context.Context, source parser.LogSource, w io.Writer) (*output.Report, error) {
	a, err := analyzer.NewAnalyzer(p.cfg, analyzer.WithLogger(p.logger))
	if err != nil {
		return nil, fmt.Errorf("creating analyzer: %w", err)
	}

	result, err := a.Analyze(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, output.ReportOptions{
		TopN:       p.cfg.TopN,
		ConfigFile: p.configFile,
	})

	formatter, err := output.NewFormatter(p.cfg.Output, p.format)
	if err != nil {
		return nil, err
	}
	if err := formatter.Format(ctx, report, w); err != nil {
		return nil, fmt.Errorf("formatting output: %w", err)
	}

	// Webhook failures are logged, never returned.
	p.webhooks.Dispatch(ctx, p.cfg.Webhooks, report, p.logger)

	return report, nil
}

// openInputs resolves the positional arguments to a log source. No arguments
// or a single "-" reads stdin. Every file is checked up front so a missing or
// unreadable input fails before any output is written.
func openInputs(args []string, stdin io.Reader) (parser.LogSource, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == parser.StdinName) {
		return parser.NewReaderSource(io.NopCloser(stdin), parser.StdinName), nil
	}

	for _, a := range args {
		if a == parser.StdinName {
			return nil, fmt.Errorf("%q (stdin) cannot be combined with file arguments", parser.StdinName)
		}
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return nil, fmt.Errorf("expanding inputs: %w", err)
	}
	for _, f := range files {
		if err := parser.CheckReadable(f); err != nil {
			return nil, err
		}
	}

	return parser.NewFileSource(files), nil
}
