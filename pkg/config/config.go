package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"unicode"

	"github.com/jmespath/go-jmespath"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. Values present in the
// file replace the defaults; environment overrides apply on top.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the configuration file at path, or returns the
// default configuration when path is empty. Environment overrides apply
// either way.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}

	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors, fills in defaults, and
// compiles the json_field expression.
func Validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return errors.New("sources: at least one source is required")
	}
	for _, src := range cfg.Sources {
		if src == CloudWatchSourceName && cfg.CloudWatch == nil {
			return fmt.Errorf("sources: %q requires a cloudwatch section", CloudWatchSourceName)
		}
	}

	if err := validateMarkers(cfg.Markers); err != nil {
		return err
	}

	if err := validateInput(&cfg.Input); err != nil {
		return fmt.Errorf("input: %w", err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if cfg.CloudWatch != nil {
		if err := validateCloudWatch(cfg.CloudWatch); err != nil {
			return fmt.Errorf("cloudwatch: %w", err)
		}
	}

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

func validateMarkers(markers []MarkerConfig) error {
	if len(markers) == 0 {
		return errors.New("markers: at least one marker is required")
	}

	tokens := make(map[string]bool, len(markers))
	names := make(map[string]bool, len(markers))
	for i := range markers {
		m := &markers[i]
		if m.Token == "" {
			return fmt.Errorf("markers[%d]: token is required", i)
		}
		if strings.IndexFunc(m.Token, unicode.IsSpace) >= 0 {
			return fmt.Errorf("markers[%d]: token %q must not contain whitespace", i, m.Token)
		}
		if tokens[m.Token] {
			return fmt.Errorf("markers[%d]: duplicate token %q", i, m.Token)
		}
		tokens[m.Token] = true

		if m.Name == "" {
			m.Name = m.Token
		}
		if names[m.Name] {
			return fmt.Errorf("markers[%d]: duplicate name %q", i, m.Name)
		}
		names[m.Name] = true
	}

	return nil
}

func validateInput(in *InputConfig) error {
	if in.JSONField == "" {
		return nil
	}

	expr, err := jmespath.Compile(in.JSONField)
	if err != nil {
		return fmt.Errorf("invalid json_field expression %q: %w", in.JSONField, err)
	}
	in.compiledField = expr

	return nil
}

func validateOutput(out *OutputConfig) error {
	switch out.Format {
	case "":
		out.Format = FormatText
	case FormatText, FormatJSONL, FormatCSV:
		// Valid
	default:
		return fmt.Errorf("invalid format %q (must be text, jsonl, or csv)", out.Format)
	}

	return nil
}

func validateCloudWatch(cw *CloudWatchConfig) error {
	if cw.Group == "" {
		return errors.New("group is required")
	}

	if cw.Since <= 0 {
		cw.Since = DefaultCloudWatchSince
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

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

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnRecords, WebhookTriggerAlways, WebhookTriggerNever:
			// Valid
		default:
			return fmt.Errorf("invalid trigger %q (must be on_records, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnRecords
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}
