package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logtriage/internal/server"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	Addr      string
	BodyLimit string
}

// NewServeCommand creates the serve command.
func NewServeCommand(g *GlobalOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve log analysis over HTTP",
		Long: `Start an HTTP service that analyzes log text posted to it.

Endpoints:
  POST /api/v1/analyze   request body is the log; returns the report
  GET  /api/v1/formats   recognized line formats
  GET  /api/health       health check

Query parameters for /api/v1/analyze override the config file per request:
  errors_only, include_warnings, since, until, pattern, top, syslog_year,
  format (json|text|msgpack), source, notify (send configured webhooks)

Gzip request bodies are accepted with Content-Encoding: gzip.

Example:
  logtriage serve --addr :9000
  curl --data-binary @app.log 'localhost:9000/api/v1/analyze?include_warnings=true'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", server.DefaultAddr, "Listen address")
	cmd.Flags().StringVar(&opts.BodyLimit, "body-limit", server.DefaultBodyLimit, "Maximum request body size (e.g. 64M)")

	return cmd
}

func runServe(cmd *cobra.Command, g *GlobalOptions, opts *ServeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, _, err := g.LoadConfig(ctx)
	if err != nil {
		return err
	}

	s := server.New(
		server.WithLogger(g.Logger()),
		server.WithConfig(cfg),
		server.WithBodyLimit(opts.BodyLimit),
		server.WithVersion(Version),
	)
	return s.Start(ctx, opts.Addr)
}
