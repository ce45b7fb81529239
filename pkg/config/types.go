// Package config provides configuration loading and validation for ucitap.
package config

import (
	"time"

	"github.com/jmespath/go-jmespath"
)

// CloudWatchSourceName is the sources entry that refers to the cloudwatch
// section. It can be mixed with file paths; a local file by that name can
// still be read as "./cloudwatch".
const CloudWatchSourceName = "cloudwatch"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Sources    []string          `yaml:"sources"`
	Markers    []MarkerConfig    `yaml:"markers"`
	Input      InputConfig       `yaml:"input,omitempty"`
	Output     OutputConfig      `yaml:"output,omitempty"`
	CloudWatch *CloudWatchConfig `yaml:"cloudwatch,omitempty"`
	Webhooks   []WebhookConfig   `yaml:"webhooks,omitempty"`
}

// MarkerConfig defines one marker token whose following token is captured.
type MarkerConfig struct {
	// Name labels the captured value in jsonl and csv output.
	// Defaults to the token.
	Name string `yaml:"name,omitempty"`

	// Token is the exact whitespace-delimited token to look for (required).
	Token string `yaml:"token"`
}

// InputConfig defines how raw lines are pre-processed before matching.
type InputConfig struct {
	// JSONField selects the text to match out of JSON-wrapped lines
	// (docker json-file logs, CloudWatch JSON events) with a JMESPath
	// expression, e.g. "log" or "record.message". Empty means lines are
	// matched as-is.
	JSONField string `yaml:"json_field,omitempty"`

	// compiledField is the pre-compiled expression (populated during validation).
	compiledField *jmespath.JMESPath
}

// CompiledField returns the pre-compiled JSONField expression, or nil when
// no field is configured.
func (i *InputConfig) CompiledField() *jmespath.JMESPath {
	return i.compiledField
}

// Output format names.
const (
	FormatText  = "text"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// OutputConfig defines how extracted records are written.
type OutputConfig struct {
	// Format selects the record encoding: text, jsonl, or csv.
	// Defaults to text.
	Format string `yaml:"format,omitempty"`
}

// CloudWatchConfig defines a CloudWatch Logs group to read instead of
// local files.
type CloudWatchConfig struct {
	// Group is the log group name (required when cloudwatch is configured).
	Group string `yaml:"group"`

	// StreamPrefix limits reading to streams whose name has this prefix.
	StreamPrefix string `yaml:"stream_prefix,omitempty"`

	// Region overrides the AWS region. Empty uses default resolution.
	Region string `yaml:"region,omitempty"`

	// Profile selects a shared config profile. Empty uses the default chain.
	Profile string `yaml:"profile,omitempty"`

	// Since bounds how far back to read. Defaults to 24h.
	Since time.Duration `yaml:"since,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnRecords fires only when at least one record was
	// extracted (default).
	WebhookTriggerOnRecords WebhookTrigger = "on_records"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending run reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_records" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
