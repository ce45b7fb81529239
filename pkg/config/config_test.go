package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
sources:
  - /var/games/engines/*.log
markers:
  - name: depth
    token: depth
  - name: time
    token: time
  - name: nodes
    token: nodes
output:
  format: jsonl
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Sources) != 1 {
		t.Errorf("Sources = %d, want 1", len(cfg.Sources))
	}
	if len(cfg.Markers) != 3 {
		t.Errorf("Markers = %d, want 3", len(cfg.Markers))
	}
	if cfg.Markers[2].Token != "nodes" {
		t.Errorf("Marker token = %q, want %q", cfg.Markers[2].Token, "nodes")
	}
	if cfg.Output.Format != FormatJSONL {
		t.Errorf("Format = %q, want jsonl", cfg.Output.Format)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	content := `invalid: yaml: content: [`
	path := writeTempFile(t, "invalid.yaml", content)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_DefaultsPreserved(t *testing.T) {
	// A file that only names sources keeps the default markers and format.
	content := `
sources:
  - engine.log
`
	path := writeTempFile(t, "minimal.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Markers) != 2 || cfg.Markers[0].Token != "depth" || cfg.Markers[1].Token != "time" {
		t.Errorf("Markers = %+v, want default depth/time", cfg.Markers)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("Format = %q, want text", cfg.Output.Format)
	}
}

func TestValidate_NoSources(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = nil
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for empty sources")
	}
}

func TestValidate_NoMarkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = nil
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for empty markers")
	}
}

func TestValidate_MarkerMissingToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = []MarkerConfig{{Name: "depth"}}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for marker without token")
	}
}

func TestValidate_MarkerTokenWithWhitespace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = []MarkerConfig{{Token: "depth time"}}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for token containing whitespace")
	}
}

func TestValidate_DuplicateMarkerTokens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = []MarkerConfig{{Token: "depth"}, {Token: "depth"}}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for duplicate tokens")
	}
}

func TestValidate_DuplicateMarkerNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = []MarkerConfig{
		{Name: "d", Token: "depth"},
		{Name: "d", Token: "seldepth"},
	}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for duplicate names")
	}
}

func TestValidate_MarkerNameDefaultsToToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = []MarkerConfig{{Token: "nps"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Markers[0].Name != "nps" {
		t.Errorf("Name = %q, want %q", cfg.Markers[0].Name, "nps")
	}
}

func TestValidate_CompilesJSONField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.JSONField = "record.message"
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	expr := cfg.Input.CompiledField()
	if expr == nil {
		t.Fatal("CompiledField() = nil, want compiled expression")
	}
	res, err := expr.Search(map[string]any{"record": map[string]any{"message": "info depth 1 time 5"}})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res != "info depth 1 time 5" {
		t.Errorf("Search() = %v, want the message field", res)
	}
}

func TestValidate_InvalidJSONField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.JSONField = "log["
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for invalid json_field")
	}
}

func TestValidate_FormatDefaultsToText(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Format = ""
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("Format = %q, want text", cfg.Output.Format)
	}
}

func TestValidate_InvalidFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Format = "xml"
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for unknown format")
	}
}

func TestValidate_CloudWatchSourceNeedsSection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []string{"engine.log", CloudWatchSourceName}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for cloudwatch source without cloudwatch section")
	}

	cfg.CloudWatch = &CloudWatchConfig{Group: "/engines/stockfish"}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_CloudWatchRequiresGroup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CloudWatch = &CloudWatchConfig{Region: "us-east-1"}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for cloudwatch without group")
	}
}

func TestValidate_CloudWatchDefaultSince(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CloudWatch = &CloudWatchConfig{Group: "/engines/stockfish"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.CloudWatch.Since != DefaultCloudWatchSince {
		t.Errorf("Since = %v, want %v", cfg.CloudWatch.Since, DefaultCloudWatchSince)
	}
}

func TestValidate_Webhook_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		Name:    "results",
		URL:     "https://example.com/webhook",
		Trigger: WebhookTriggerOnRecords,
		Timeout: 30 * time.Second,
	}}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Webhook_MissingURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{Name: "results"}}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for webhook without url")
	}
}

func TestValidate_Webhook_InvalidScheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "ftp://example.com/webhook"}}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for non-http scheme")
	}
}

func TestValidate_Webhook_InvalidTrigger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		URL:     "https://example.com/webhook",
		Trigger: "sometimes",
	}}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for unknown trigger")
	}
}

func TestValidate_Webhook_AllTriggers(t *testing.T) {
	for _, trigger := range []WebhookTrigger{WebhookTriggerOnRecords, WebhookTriggerAlways, WebhookTriggerNever} {
		cfg := DefaultConfig()
		cfg.Webhooks = []WebhookConfig{{
			URL:     "https://example.com/webhook",
			Trigger: trigger,
		}}
		if err := Validate(cfg); err != nil {
			t.Errorf("Validate() error = %v for trigger %q", err, trigger)
		}
	}
}

func TestValidate_Webhook_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{URL: "https://example.com/webhook"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerOnRecords {
		t.Errorf("Trigger = %q, want on_records", cfg.Webhooks[0].Trigger)
	}
	if cfg.Webhooks[0].Timeout != DefaultWebhookTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Webhooks[0].Timeout, DefaultWebhookTimeout)
	}
}

func TestValidate_Webhook_TokenEnvExpansion(t *testing.T) {
	os.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")
	defer os.Unsetenv("TEST_WEBHOOK_TOKEN")

	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		URL:   "https://example.com/webhook",
		Token: "${TEST_WEBHOOK_TOKEN}",
	}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Token != "secret-value" {
		t.Errorf("Token = %q, want expanded value", cfg.Webhooks[0].Token)
	}
}

func TestExpandEnvVar(t *testing.T) {
	os.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")
	defer os.Unsetenv("TEST_WEBHOOK_TOKEN")

	tests := []struct {
		input string
		want  string
	}{
		{"${TEST_WEBHOOK_TOKEN}", "secret-value"},
		{"$TEST_WEBHOOK_TOKEN", "secret-value"},
		{"plain-value", "plain-value"},
		{"", ""},
		{"${NONEXISTENT_VAR}", ""},
	}

	for _, tt := range tests {
		got := expandEnvVar(tt.input)
		if got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Sources) != 1 || cfg.Sources[0] != "-" {
		t.Errorf("Sources = %v, want [-]", cfg.Sources)
	}
	if len(cfg.Markers) != 2 {
		t.Fatalf("Markers = %d, want 2", len(cfg.Markers))
	}
	if cfg.Markers[0].Token != "depth" || cfg.Markers[1].Token != "time" {
		t.Errorf("Markers = %+v, want depth then time", cfg.Markers)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("Format = %q, want text", cfg.Output.Format)
	}

	// The default config must validate as-is; it backs config-less runs.
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(DefaultConfig()) error = %v", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	os.Setenv(EnvSources, "a.log, b.log")
	os.Setenv(EnvFormat, "csv")
	defer os.Unsetenv(EnvSources)
	defer os.Unsetenv(EnvFormat)

	path := writeTempFile(t, "config.yaml", "sources:\n  - original.log\n")
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"a.log", "b.log"}
	if len(cfg.Sources) != 2 || cfg.Sources[0] != want[0] || cfg.Sources[1] != want[1] {
		t.Errorf("Sources = %v, want %v", cfg.Sources, want)
	}
	if cfg.Output.Format != FormatCSV {
		t.Errorf("Format = %q, want csv", cfg.Output.Format)
	}
}

func TestLoad_WithCloudWatchAndWebhooks(t *testing.T) {
	content := `
sources:
  - cloudwatch
cloudwatch:
  group: /engines/stockfish
  stream_prefix: match-
  region: us-east-1
  since: 2h
webhooks:
  - name: results
    url: "https://example.com/webhook"
    trigger: always
    timeout: 30s
  - url: "https://backup.example.com/webhook"
`
	path := writeTempFile(t, "cloud.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CloudWatch == nil {
		t.Fatal("CloudWatch = nil, want configured group")
	}
	if cfg.CloudWatch.Group != "/engines/stockfish" {
		t.Errorf("Group = %q", cfg.CloudWatch.Group)
	}
	if cfg.CloudWatch.Since != 2*time.Hour {
		t.Errorf("Since = %v, want 2h", cfg.CloudWatch.Since)
	}
	if len(cfg.Webhooks) != 2 {
		t.Fatalf("Webhooks = %d, want 2", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerAlways {
		t.Errorf("Webhook[0].Trigger = %v, want always", cfg.Webhooks[0].Trigger)
	}
	if cfg.Webhooks[1].Trigger != WebhookTriggerOnRecords {
		t.Errorf("Webhook[1].Trigger = %v, want on_records default", cfg.Webhooks[1].Trigger)
	}
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}

	if len(cfg.Sources) != 1 || cfg.Sources[0] != "-" {
		t.Errorf("Sources = %v, want [-]", cfg.Sources)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("Format = %q, want text", cfg.Output.Format)
	}
}

func TestLoadOrDefault_WithPath(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "sources:\n  - engine.log\n")

	cfg, err := LoadOrDefault(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "engine.log" {
		t.Errorf("Sources = %v, want [engine.log]", cfg.Sources)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
