package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/parser"
)

// Process exit codes.
const (
	ExitOK               = 0
	ExitErrorsFound      = 1 // analyze --fail-on-errors found errors
	ExitFailure          = 2 // configuration or runtime error
	ExitInputUnavailable = 3 // a log input is missing or unreadable
)

// ExitCode is set by commands to indicate the result
var ExitCode = ExitOK

// DefaultLogLevel keeps diagnostics quiet unless asked for.
const DefaultLogLevel = "warn"

// GlobalOptions holds the root command's persistent flags.
type GlobalOptions struct {
	ConfigFile string
	LogLevel   string

	logger *zap.Logger
}

// Logger returns the configured logger, or a no-op logger before setup.
func (g *GlobalOptions) Logger() *zap.Logger {
	if g == nil || g.logger == nil {
		return zap.NewNop()
	}
	return g.logger
}

// SetupLogger builds the logger for the configured level, writing to w.
func (g *GlobalOptions) SetupLogger(w io.Writer) error {
	logger, err := NewLogger(g.LogLevel, w)
	if err != nil {
		return err
	}
	g.logger = logger
	return nil
}

// LoadConfig loads the --config file, or a discovered .logtriage.yaml, or
// defaults. The returned path is empty when no file was used.
func (g *GlobalOptions) LoadConfig(ctx context.Context) (*config.Config, string, error) {
	path := ""
	if g != nil {
		path = g.ConfigFile
	}
	cfg, used, err := config.LoadOrDefault(ctx, path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	if used != "" {
		g.Logger().Debug("using config file", zap.String("path", used))
	}
	return cfg, used, nil
}

// NewLogger creates a console logger at level ("debug", "info", "warn", "error").
func NewLogger(level string, w io.Writer) (*zap.Logger, error) {
	if level == "" {
		level = DefaultLogLevel
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// ExitCodeFor maps a command error to a process exit code.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, parser.ErrInputNotFound), errors.Is(err, parser.ErrPermissionDenied):
		return ExitInputUnavailable
	default:
		return ExitFailure
	}
}

// InputErrorHint returns guidance for input-unavailable errors, or "".
func InputErrorHint(err error) string {
	switch {
	case errors.Is(err, parser.ErrInputNotFound):
		return "check the path, or quote a glob such as '/var/log/app/*.log' so logtriage expands it"
	case errors.Is(err, parser.ErrPermissionDenied):
		return "the file is not readable by this user; re-run with elevated privileges, e.g. sudo logtriage analyze <file>"
	default:
		return ""
	}
}
