package config

import (
	"os"
	"strings"
	"time"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout  = 10 * time.Second
	DefaultCloudWatchSince = 24 * time.Hour
)

// Environment variable names.
const (
	EnvSources = "UCITAP_SOURCES"
	EnvFormat  = "UCITAP_FORMAT"
)

// DefaultConfig returns the configuration used when no config file is
// given: read stdin, capture the token after "depth" and after "time",
// write plain text.
func DefaultConfig() *Config {
	return &Config{
		Sources: []string{"-"},
		Markers: []MarkerConfig{
			{Name: "depth", Token: "depth"},
			{Name: "time", Token: "time"},
		},
		Output: OutputConfig{Format: FormatText},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if sources := os.Getenv(EnvSources); sources != "" {
		var cleaned []string
		for _, p := range strings.Split(sources, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			c.Sources = cleaned
		}
	}
	if format := os.Getenv(EnvFormat); format != "" {
		c.Output.Format = format
	}
}
