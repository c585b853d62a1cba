// Package config provides configuration loading and validation for logtriage.
package config

import (
	"regexp"
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// ErrorsOnly restricts analysis to error-tier records.
	ErrorsOnly bool `yaml:"errors_only"`

	// IncludeWarnings additionally counts and reports warning-tier records.
	IncludeWarnings bool `yaml:"include_warnings"`

	// Since and Until bound the time-range filter (inclusive).
	// Accepted forms: "2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02".
	Since string `yaml:"since,omitempty"`
	Until string `yaml:"until,omitempty"`

	// Pattern is a case-insensitive regex matched against record messages.
	Pattern string `yaml:"pattern,omitempty"`

	// TopN controls how many recurring messages are listed.
	TopN int `yaml:"top_n"`

	// Output names the report format: text, json or msgpack.
	Output string `yaml:"output,omitempty"`

	// SyslogYear is the year assumed for syslog timestamps, which carry none.
	// Zero means infer it from the current date.
	SyslogYear int `yaml:"syslog_year,omitempty"`

	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`

	// Populated during validation.
	since           time.Time
	until           time.Time
	compiledPattern *regexp.Regexp
}

// SinceTime returns the parsed lower time bound, or the zero time if unset.
func (c *Config) SinceTime() time.Time {
	return c.since
}

// UntilTime returns the parsed upper time bound, or the zero time if unset.
func (c *Config) UntilTime() time.Time {
	return c.until
}

// CompiledPattern returns the compiled message pattern, or nil if unset.
func (c *Config) CompiledPattern() *regexp.Regexp {
	return c.compiledPattern
}

// Output format names.
const (
	OutputText    = "text"
	OutputJSON    = "json"
	OutputMsgpack = "msgpack"
)

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnErrors fires only when errors are found (default).
	WebhookTriggerOnErrors WebhookTrigger = "on_errors"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_errors" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
