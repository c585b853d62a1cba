package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Default values for configuration.
const (
	DefaultTopN           = 10
	DefaultOutput         = OutputText
	DefaultWebhookTimeout = 10 * time.Second
)

// EnvPrefix is prepended to every environment override, e.g. LOGTRIAGE_TOP_N.
const EnvPrefix = "LOGTRIAGE"

// ConfigName is the file name searched for when no --config is given.
const ConfigName = ".logtriage"

// Keys that may be overridden from the environment.
const (
	keyErrorsOnly      = "errors_only"
	keyIncludeWarnings = "include_warnings"
	keySince           = "since"
	keyUntil           = "until"
	keyPattern         = "pattern"
	keyTopN            = "top_n"
	keyOutput          = "output"
	keySyslogYear      = "syslog_year"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TopN:     DefaultTopN,
		Output:   DefaultOutput,
		Webhooks: []WebhookConfig{},
	}
}

// newEnvViper returns a viper instance bound to the LOGTRIAGE_ environment.
func newEnvViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		keyErrorsOnly, keyIncludeWarnings, keySince, keyUntil,
		keyPattern, keyTopN, keyOutput, keySyslogYear,
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// A value that does not convert is an error naming the variable.
func (c *Config) applyEnvironmentOverrides() error {
	v := newEnvViper()

	bools := map[string]*bool{
		keyErrorsOnly:      &c.ErrorsOnly,
		keyIncludeWarnings: &c.IncludeWarnings,
	}
	for key, dst := range bools {
		if !v.IsSet(key) {
			continue
		}
		b, err := cast.ToBoolE(v.GetString(key))
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", envName(key), v.GetString(key))
		}
		*dst = b
	}

	ints := map[string]*int{
		keyTopN:       &c.TopN,
		keySyslogYear: &c.SyslogYear,
	}
	for key, dst := range ints {
		if !v.IsSet(key) {
			continue
		}
		n, err := cast.ToIntE(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", envName(key), v.GetString(key))
		}
		*dst = n
	}

	if v.IsSet(keySince) {
		c.Since = v.GetString(keySince)
	}
	if v.IsSet(keyUntil) {
		c.Until = v.GetString(keyUntil)
	}
	if v.IsSet(keyPattern) {
		c.Pattern = v.GetString(keyPattern)
	}
	if v.IsSet(keyOutput) {
		c.Output = v.GetString(keyOutput)
	}
	return nil
}

// envName returns the environment variable that overrides key.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}
