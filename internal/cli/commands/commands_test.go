package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ccollicutt/logtriage/pkg/parser"
)

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, NewVersionCommand(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "logtriage "+Version+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestValidateCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	valid := writeLog(t, dir, "valid.yaml", `top_n: 5
output: json
include_warnings: true
since: "2025-10-26 14:00"
pattern: "timeout|refused"
syslog_year: 2024
webhooks:
  - name: alerts
    url: https://hooks.example.com/logtriage
`)

	out, err := runCommand(t, NewValidateCommand(), nil, valid)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	for _, want := range []string{
		"Configuration valid!",
		"Top N:            5",
		"Output:           json",
		"Include warnings: true",
		"Time window:      2025-10-26 14:00 .. -",
		"Pattern:          (?i)timeout|refused",
		"Syslog year:      2024",
		"1. [on_errors] alerts",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateCommand_Invalid(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	tests := map[string]string{
		"bad top_n":     "top_n: 0\n",
		"bad output":    "output: xml\n",
		"bad since":     "since: yesterday\n",
		"bad pattern":   "pattern: \"(unclosed\"\n",
		"bad trigger":   "webhooks:\n  - url: https://example.com\n    trigger: sometimes\n",
		"bad yaml":      "top_n: [\n",
		"inverted":      "since: \"2025-10-27\"\nuntil: \"2025-10-26\"\n",
		"negative year": "syslog_year: -1\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeLog(t, dir, strings.ReplaceAll(name, " ", "_")+".yaml", content)
			_, err := runCommand(t, NewValidateCommand(), nil, path)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.HasPrefix(err.Error(), "validation failed:") {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestValidateCommand_Missing(t *testing.T) {
	if _, err := runCommand(t, NewValidateCommand(), nil, "/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config")
	}
	if _, err := runCommand(t, NewValidateCommand(), nil); err == nil {
		t.Error("Expected error without arguments")
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("boom"), ExitFailure},
		{fmt.Errorf("opening: %w", parser.ErrInputNotFound), ExitInputUnavailable},
		{fmt.Errorf("opening: %w", parser.ErrPermissionDenied), ExitInputUnavailable},
	}

	for _, tt := range tests {
		if got := ExitCodeFor(tt.err); got != tt.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestInputErrorHint(t *testing.T) {
	if hint := InputErrorHint(fmt.Errorf("x: %w", parser.ErrInputNotFound)); !strings.Contains(hint, "glob") {
		t.Errorf("not-found hint = %q", hint)
	}
	if hint := InputErrorHint(fmt.Errorf("x: %w", parser.ErrPermissionDenied)); !strings.Contains(hint, "sudo") {
		t.Errorf("permission hint = %q", hint)
	}
	if hint := InputErrorHint(errors.New("other")); hint != "" {
		t.Errorf("unexpected hint %q", hint)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("info", &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("log output = %q", buf.String())
	}

	if _, err := NewLogger("loud", &buf); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestGlobalOptions(t *testing.T) {
	isolate(t)

	var g *GlobalOptions
	if g.Logger() == nil {
		t.Error("nil options should still yield a logger")
	}

	g = &GlobalOptions{LogLevel: "bogus"}
	if err := g.SetupLogger(&bytes.Buffer{}); err == nil {
		t.Error("Expected error for bogus level")
	}

	g = &GlobalOptions{ConfigFile: "/nonexistent/config.yaml"}
	if _, _, err := g.LoadConfig(context.Background()); err == nil {
		t.Error("Expected error for missing config file")
	}

	g = &GlobalOptions{}
	cfg, used, err := g.LoadConfig(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if used != "" || cfg.TopN != 10 {
		t.Errorf("defaults: used=%q top=%d", used, cfg.TopN)
	}
}

func TestLoadConfig_Discovered(t *testing.T) {
	isolate(t)
	writeLog(t, ".", ".logtriage.yaml", "top_n: 4\n")

	cfg, used, err := (&GlobalOptions{}).LoadConfig(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if used == "" || cfg.TopN != 4 {
		t.Errorf("discovered config not used: used=%q top=%d", used, cfg.TopN)
	}
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	logPath := writeLog(t, dir, "app.log", twelveLines)

	files, err := watchFiles([]string{logPath})
	if err != nil || len(files) != 1 {
		t.Errorf("files=%v err=%v", files, err)
	}

	if _, err := watchFiles([]string{parser.StdinName}); err == nil {
		t.Error("Expected error for stdin")
	}
	if _, err := watchFiles([]string{dir + "/missing.log"}); !errors.Is(err, parser.ErrInputNotFound) {
		t.Errorf("Expected ErrInputNotFound, got %v", err)
	}
}

func TestNewWatchAndServeCommands(t *testing.T) {
	g := &GlobalOptions{}

	watch := NewWatchCommand(g)
	for _, flag := range []string{"debounce", "errors-only", "output", "webhook-url"} {
		if watch.Flags().Lookup(flag) == nil {
			t.Errorf("watch missing flag: %s", flag)
		}
	}
	if _, err := runCommand(t, NewWatchCommand(g), nil); err == nil {
		t.Error("watch without files should fail")
	}

	serve := NewServeCommand(g)
	for _, flag := range []string{"addr", "body-limit"} {
		if serve.Flags().Lookup(flag) == nil {
			t.Errorf("serve missing flag: %s", flag)
		}
	}
}
