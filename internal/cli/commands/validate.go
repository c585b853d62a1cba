package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logtriage/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a logtriage configuration file without running analysis.

Checks:
  - YAML syntax
  - top_n, output and syslog_year values
  - since/until time bounds and their order
  - Message pattern regex validity
  - Webhook URLs and triggers

LOGTRIAGE_* environment overrides are applied before validation.`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Output:           %s\n", cfg.Output)
	fmt.Fprintf(out, "  Top N:            %d\n", cfg.TopN)
	fmt.Fprintf(out, "  Errors only:      %t\n", cfg.ErrorsOnly)
	fmt.Fprintf(out, "  Include warnings: %t\n", cfg.IncludeWarnings)
	if cfg.Since != "" || cfg.Until != "" {
		fmt.Fprintf(out, "  Time window:      %s .. %s\n", orDash(cfg.Since), orDash(cfg.Until))
	}
	if re := cfg.CompiledPattern(); re != nil {
		fmt.Fprintf(out, "  Pattern:          %s\n", re.String())
	}
	if cfg.SyslogYear > 0 {
		fmt.Fprintf(out, "  Syslog year:      %d\n", cfg.SyslogYear)
	}

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(out, "\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, wh.Trigger, name)
		}
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
