package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logtriage/pkg/config"
	"github.com/ccollicutt/logtriage/pkg/detector"
	"github.com/ccollicutt/logtriage/pkg/output"
	"github.com/ccollicutt/logtriage/pkg/parser"
	"github.com/ccollicutt/logtriage/pkg/webhook"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// Diagnostic statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(g *GlobalOptions) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [log-file...]",
		Short: "Diagnose common setup issues",
		Long: `Diagnose common setup issues before running analysis.

This command checks:
- Config file discovery, syntax and values
- Log file existence and read permission
- Whether log lines match a recognized format
- Webhook configuration (and reachability with -v)

Example:
  logtriage diagnose /var/log/app.log
  logtriage diagnose --config team.yaml -v 'logs/*.log'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), g, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, g *GlobalOptions, inputs []string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Locate and parse the config file
	cfg, cfgResults := checkConfig(ctx, g.ConfigFile)
	results = append(results, cfgResults...)

	// 2. Check log inputs
	files, inputResults := checkInputs(inputs)
	results = append(results, inputResults...)

	// 3. Check formats against actual logs
	results = append(results, checkFormats(ctx, files, cfg, opts)...)

	// 4. Check webhooks configuration
	if cfg != nil {
		results = append(results, checkWebhooks(ctx, cfg, opts)...)
	}

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfig(ctx context.Context, path string) (*config.Config, []DiagnosticResult) {
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return nil, []DiagnosticResult{{
				Check:   "Config File",
				Status:  StatusError,
				Message: fmt.Sprintf("Discovered config file is unreadable: %v", err),
			}}
		}
		if found == "" {
			cfg, _, err := config.LoadOrDefault(ctx, "")
			if err != nil {
				return nil, []DiagnosticResult{{
					Check:    "Config File",
					Status:   StatusError,
					Message:  fmt.Sprintf("Defaults are invalid: %v", err),
					Suggests: []string{"Check LOGTRIAGE_* environment variables"},
				}}
			}
			return cfg, []DiagnosticResult{{
				Check:   "Config File",
				Status:  StatusOK,
				Message: "No config file found; using defaults",
				Details: []string{fmt.Sprintf("Searched for %s.yaml in $HOME and the working directory", config.ConfigName)},
			}}
		}
		path = found
	}

	result := checkConfigExists(path)
	if result.Status == StatusError {
		return nil, []DiagnosticResult{result}
	}

	cfg, parsed := checkConfigParseable(ctx, path)
	return cfg, []DiagnosticResult{result, parsed}
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{Check: "Config File", Status: StatusError}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Message = "Config file not found: " + path
		result.Suggests = []string{
			"Pass --config with an existing file, or drop it to use .logtriage.yaml discovery",
			"Generate one with 'logtriage detect --write-config .logtriage.yaml <log-file>'",
		}
	case err != nil:
		result.Message = fmt.Sprintf("Config file is not accessible: %v", err)
	case info.IsDir():
		result.Message = path + " is a directory"
	case info.Size() == 0:
		result.Status = StatusWarning
		result.Message = "Config file is empty; defaults will be used"
	default:
		result.Status = StatusOK
		result.Message = fmt.Sprintf("Using %s (%d bytes)", path, info.Size())
	}
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		} else {
			result.Suggests = []string{
				"Run 'logtriage validate " + path + "' for details",
			}
		}
		return nil, result
	}

	result.Status = StatusOK
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Output: %s, top_n: %d", cfg.Output, cfg.TopN),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

// checkInputs expands and probes each input, separating missing files from
// permission problems.
func checkInputs(inputs []string) ([]string, []DiagnosticResult) {
	if len(inputs) == 0 {
		return nil, []DiagnosticResult{{
			Check:   "Log Inputs",
			Status:  StatusOK,
			Message: "No files given; analyze would read stdin",
		}}
	}

	results := []DiagnosticResult{}
	files, err := parser.ExpandGlobs(inputs)
	if err != nil {
		return nil, []DiagnosticResult{{
			Check:    "Log Inputs",
			Status:   StatusError,
			Message:  fmt.Sprintf("Invalid glob pattern: %v", err),
			Suggests: []string{"Quote globs so the shell does not expand them, e.g. 'logs/**/*.log'"},
		}}
	}

	readable := []string{}
	for _, file := range files {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Log File: %s", file),
		}

		err := parser.CheckReadable(file)
		switch {
		case errors.Is(err, parser.ErrInputNotFound):
			result.Status = StatusError
			result.Message = "File does not exist"
			result.Suggests = []string{
				"Check if the log file path is correct",
				"Globs that match nothing are treated as literal paths",
			}
		case errors.Is(err, parser.ErrPermissionDenied):
			result.Status = StatusError
			result.Message = "Permission denied"
			result.Suggests = []string{
				"Re-run with elevated privileges, e.g. 'sudo logtriage analyze " + file + "'",
				"Or add your user to the group that owns the file (often 'adm' for /var/log)",
			}
		case err != nil:
			result.Status = StatusError
			result.Message = fmt.Sprintf("Cannot open file: %v", err)
		default:
			result = describeFile(result, file)
			if result.Status != StatusError {
				readable = append(readable, file)
			}
		}
		results = append(results, result)
	}

	if len(readable) == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Log Files Summary",
			Status:  StatusError,
			Message: "No readable log files found",
			Suggests: []string{
				"Ensure at least one log file exists and is readable",
			},
		})
	}

	return readable, results
}

func describeFile(result DiagnosticResult, file string) DiagnosticResult {
	info, err := os.Stat(file)
	switch {
	case err != nil:
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot access file: %v", err)
	case info.IsDir():
		result.Status = StatusError
		result.Message = "Path is a directory, not a file"
		result.Suggests = []string{
			"Use a glob pattern to match files in directory",
			"Example: '/var/log/app/*.log'",
		}
	case info.Size() == 0:
		result.Status = StatusWarning
		result.Message = "File is empty (0 bytes)"
	default:
		result.Status = StatusOK
		result.Message = fmt.Sprintf("Readable (%d bytes)", info.Size())
	}
	return result
}

// checkFormats samples the first readable file and reports how much of it
// the classifier recognizes.
func checkFormats(ctx context.Context, files []string, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	if len(files) == 0 {
		return nil
	}

	syslogYear := 0
	if cfg != nil {
		syslogYear = cfg.SyslogYear
	}
	classifier := parser.NewClassifier(parser.NewNormalizer(parser.WithSyslogYear(syslogYear)))
	d := detector.New(detector.WithSampleSize(50), detector.WithClassifier(classifier))

	logFile := files[0]
	result := DiagnosticResult{
		Check: fmt.Sprintf("Format Test: %s", logFile),
	}

	det, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("Cannot read file: %v", err)
		return []DiagnosticResult{result}
	}

	switch {
	case det.SampledLines == 0:
		result.Status = StatusWarning
		result.Message = "No non-blank lines to sample"
		return []DiagnosticResult{result}

	case !det.HasMatch():
		result.Status = StatusError
		result.Message = "No lines match a recognized format"
		result.Suggests = []string{
			"Every line will be counted as INFO, so no errors can be found",
			"Run 'logtriage detect --list' to see the supported formats",
		}
		if det.UnstructuredLine != "" {
			result.Details = []string{
				"Sample line that didn't match:",
				output.Truncate(det.UnstructuredLine, 80),
			}
		}

	case det.Coverage() < 0.5:
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("Only %d/%d sample lines match a recognized format",
			det.StructuredLines, det.SampledLines)
		result.Details = []string{
			"Sample line that didn't match:",
			output.Truncate(det.UnstructuredLine, 80),
		}

	default:
		best := det.BestMatch()
		result.Status = StatusOK
		result.Message = fmt.Sprintf("%d/%d sample lines recognized (mostly %s)",
			det.StructuredLines, det.SampledLines, best.Format.Name)
		if opts.Verbose {
			result.Details = []string{
				"Sample match:",
				output.Truncate(best.SampleLine, 80),
			}
		}
	}

	if det.Note != "" {
		result.Suggests = append(result.Suggests, det.Note)
	}

	return []DiagnosticResult{result}
}

var statusLabels = map[string]string{
	StatusOK:      "PASS",
	StatusWarning: "WARN",
	StatusError:   "FAIL",
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== logtriage Diagnostics ===")
	fmt.Fprintln(w)

	tally := make(map[string]int)
	for _, r := range results {
		tally[r.Status]++

		fmt.Fprintf(w, "[%s] %s\n", statusLabels[r.Status], r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)
		if opts.Verbose || r.Status != StatusOK {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}
		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n",
		tally[StatusOK], tally[StatusWarning], tally[StatusError])

	switch {
	case tally[StatusError] > 0:
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	case tally[StatusWarning] > 0:
		fmt.Fprintln(w, "\nSetup is usable but has warnings.")
	default:
		fmt.Fprintln(w, "\nSetup looks good!")
	}
}

// probeTimeout caps the -v reachability check regardless of hook timeouts.
const probeTimeout = 5 * time.Second

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	if len(cfg.Webhooks) == 0 {
		if !opts.Verbose {
			return nil
		}
		return []DiagnosticResult{{
			Check:   "Webhooks",
			Status:  StatusOK,
			Message: "No webhooks configured (optional)",
		}}
	}

	var results, probes []DiagnosticResult
	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		// URL and trigger were validated when the config loaded.
		result := DiagnosticResult{
			Check:   "Webhook: " + name,
			Status:  StatusOK,
			Message: fmt.Sprintf("Fires %s", triggerDescription(wh.Trigger)),
		}
		if wh.Trigger == config.WebhookTriggerNever {
			result.Status = StatusWarning
		}

		if opts.Verbose {
			result.Details = []string{"URL: " + wh.URL, fmt.Sprintf("Timeout: %s", wh.Timeout)}
			if wh.Token != "" {
				result.Details = append(result.Details, "Token: configured")
			}
			probe := probeWebhook(ctx, wh)
			probe.Check = "Webhook Connectivity: " + name
			probes = append(probes, probe)
		}
		results = append(results, result)
	}

	return append(results, probes...)
}

func triggerDescription(trigger config.WebhookTrigger) string {
	switch trigger {
	case config.WebhookTriggerAlways:
		return "after every run"
	case config.WebhookTriggerNever:
		return "never (disabled)"
	default:
		return "when errors are found"
	}
}

// probeWebhook sends a HEAD request so nothing is delivered to the receiver.
func probeWebhook(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		return DiagnosticResult{Status: StatusWarning, Message: fmt.Sprintf("Cannot build request: %v", err)}
	}
	req.Header.Set("User-Agent", webhook.UserAgent)
	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return DiagnosticResult{
			Status:   StatusWarning,
			Message:  fmt.Sprintf("Unreachable: %v", err),
			Suggests: []string{"Check the URL and that this host can reach it"},
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusBadRequest {
		return DiagnosticResult{Status: StatusOK, Message: fmt.Sprintf("Reachable (HEAD status %d)", resp.StatusCode)}
	}
	return DiagnosticResult{
		Status:  StatusWarning,
		Message: fmt.Sprintf("Reachable, but HEAD returned status %d", resp.StatusCode),
		Suggests: []string{
			"Many receivers only accept POST; the real delivery may still succeed",
			"If a token is configured, check that it is accepted",
		},
	}
}
