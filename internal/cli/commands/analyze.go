package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	AnalysisFlags

	FailOnErrors bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(g *GlobalOptions) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [log-file...]",
		Short: "Summarize errors in log files",
		Long: `Read log files (or stdin) in a single pass and report error counts,
the most frequent error messages, an hourly histogram, the most recent errors
and recommendations.

Recognized line formats: JSON, [bracketed] timestamps, syslog and bare
"date time LEVEL" lines. Anything else is counted as INFO. Files ending in .gz
or .zst are decompressed. Globs are expanded, including "**".

With no file arguments, or "-", logs are read from stdin.

Exit codes:
  0 - Analysis completed
  1 - Errors found (only with --fail-on-errors)
  2 - Configuration or runtime error
  3 - A log file is missing or not readable

Example:
  logtriage analyze /var/log/app.log
  logtriage analyze --since "2025-10-26 14:00" --pattern timeout 'logs/**/*.log'
  journalctl -o short | logtriage analyze --include-warnings -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, g, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.FailOnErrors, "fail-on-errors", false, "Exit with status 1 when errors are found")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, g *GlobalOptions, opts *AnalyzeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, configFile, err := g.LoadConfig(ctx)
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}

	source, err := openInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer source.Close()

	p := newPipeline(cfg, configFile, opts.formatOptions(), g.Logger())
	report, err := p.run(ctx, source, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if opts.FailOnErrors && report.HasErrors() {
		ExitCode = ExitErrorsFound
	}

	return nil
}
