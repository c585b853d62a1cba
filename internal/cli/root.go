// Package cli provides the command-line interface for logtriage.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logtriage/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return execute(NewRootCommand(), os.Stderr)
}

func execute(rootCmd *cobra.Command, stderr io.Writer) int {
	commands.ExitCode = commands.ExitOK

	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		if hint := commands.InputErrorHint(err); hint != "" {
			_, _ = fmt.Fprintf(stderr, "Hint: %s\n", hint)
		}
		return commands.ExitCodeFor(err)
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "logtriage",
		Short: "Summarize errors in log files",
		Long: `logtriage reads log files in a single pass and tells you what went wrong:

  - How many errors (and optionally warnings) there are
  - Which error messages recur most
  - When errors happened, hour by hour
  - The most recent errors, and what to do next

JSON, bracketed, syslog and "date time LEVEL" lines are recognized; anything
else is counted as INFO. Nothing is stored between runs.

Configuration is read from --config, or from .logtriage.yaml in $HOME or the
working directory. LOGTRIAGE_* environment variables override file values;
command-line flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.SetupLogger(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.ConfigFile, "config", "", "Config file (default: .logtriage.yaml in $HOME or the working directory)")
	rootCmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", commands.DefaultLogLevel, "Diagnostic log level on stderr (debug|info|warn|error)")

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewWatchCommand(g))
	rootCmd.AddCommand(commands.NewServeCommand(g))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
