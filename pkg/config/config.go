package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// TimeBoundLayouts are the accepted forms for since/until, tried in order.
// All are read as UTC.
var TimeBoundLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	cfg.expandTokens()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the config at path. With an empty path it looks for
// .logtriage.yaml in the home directory and the working directory, and falls
// back to defaults (plus environment overrides) when none exists.
// It returns the path of the file actually used, if any.
func LoadOrDefault(ctx context.Context, path string) (*Config, string, error) {
	if path == "" {
		found, err := Discover()
		if err != nil {
			return nil, "", err
		}
		path = found
	}

	if path != "" {
		cfg, err := Load(ctx, path)
		return cfg, path, err
	}

	cfg := DefaultConfig()
	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, "", err
	}
	if err := Validate(cfg); err != nil {
		return nil, "", fmt.Errorf("validating config: %w", err)
	}
	return cfg, "", nil
}

// Discover returns the path of a .logtriage.yaml found in $HOME or the
// working directory, or "" if there is none.
func Discover() (string, error) {
	v := viper.New()
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Validate checks a configuration for errors, parses the time bounds and
// compiles the message pattern.
func Validate(cfg *Config) error {
	if cfg.TopN < 1 {
		return fmt.Errorf("top_n: must be at least 1, got %d", cfg.TopN)
	}

	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	switch cfg.Output {
	case OutputText, OutputJSON, OutputMsgpack:
	default:
		return fmt.Errorf("output: invalid format %q (must be text, json, or msgpack)", cfg.Output)
	}

	if cfg.SyslogYear < 0 {
		return fmt.Errorf("syslog_year: must not be negative, got %d", cfg.SyslogYear)
	}

	since, err := ParseTimeBound(cfg.Since)
	if err != nil {
		return fmt.Errorf("since: %w", err)
	}
	until, err := ParseTimeBound(cfg.Until)
	if err != nil {
		return fmt.Errorf("until: %w", err)
	}
	if !since.IsZero() && !until.IsZero() && since.After(until) {
		return fmt.Errorf("since (%s) is after until (%s)", cfg.Since, cfg.Until)
	}
	cfg.since, cfg.until = since, until

	re, err := CompilePattern(cfg.Pattern)
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}
	cfg.compiledPattern = re

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// ParseTimeBound parses a since/until value. An empty string yields the zero
// time, meaning unbounded.
func ParseTimeBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range TimeBoundLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected YYYY-MM-DD HH:MM)", s)
}

// CompilePattern compiles a case-insensitive message pattern.
// An empty expression yields a nil regexp.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	return re, nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnErrors, WebhookTriggerAlways, WebhookTriggerNever:
		default:
			return fmt.Errorf("invalid trigger %q (must be on_errors, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnErrors
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandTokens resolves webhook tokens given as environment references.
// Called once, from Load; Validate never expands.
func (c *Config) expandTokens() {
	for i := range c.Webhooks {
		c.Webhooks[i].Token = ExpandEnvVar(c.Webhooks[i].Token)
	}
}

// ExpandEnvVar expands environment variables in the format ${VAR} or $VAR.
func ExpandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
