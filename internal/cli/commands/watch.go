package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/logtriage/internal/watch"
	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/parser"
)

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	AnalysisFlags

	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(g *GlobalOptions) *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <log-file> [log-file...]",
		Short: "Re-run the analysis whenever log files change",
		Long: `Analyze log files, then re-analyze them from the start each time they
change. Every run is independent and produces a full report; webhooks fire
per run according to their triggers.

Stop with Ctrl-C.

Example:
  logtriage watch /var/log/app.log
  logtriage watch --errors-only --debounce 2s 'logs/*.log'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, g, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "Wait this long after the last change before re-running")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, g *GlobalOptions, opts *WatchOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, configFile, err := g.LoadConfig(ctx)
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}

	files, err := watchFiles(args)
	if err != nil {
		return err
	}

	w, err := watch.New(files, watch.WithDebounce(opts.Debounce), watch.WithLogger(g.Logger()))
	if err != nil {
		return err
	}

	logger := g.Logger()
	p := newPipeline(cfg, configFile, opts.formatOptions(), logger)
	out := cmd.OutOrStdout()
	runs := 0

	return w.Run(ctx, func(ctx context.Context) error {
		runs++
		if runs > 1 && cfg.Output == config.OutputText {
			fmt.Fprintf(out, "\n--- re-run %d at %s ---\n\n", runs, time.Now().Format("15:04:05"))
		}

		source := parser.NewFileSource(files)
		defer source.Close()

		report, err := p.run(ctx, source, out)
		if err != nil {
			return err
		}
		logger.Info("watch run complete",
			zap.Int("run", runs),
			zap.String("run_id", report.RunID),
			zap.Int("errors", report.Summary.ErrorCount))
		return nil
	})
}

// watchFiles expands globs and requires every file to be readable now.
func watchFiles(args []string) ([]string, error) {
	for _, a := range args {
		if a == parser.StdinName {
			return nil, fmt.Errorf("watch needs files; stdin cannot be watched")
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
	return files, nil
}
