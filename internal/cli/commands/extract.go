package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joeljk13/ucitap/internal/logging"
	"github.com/joeljk13/ucitap/pkg/config"
	"github.com/joeljk13/ucitap/pkg/extract"
	"github.com/joeljk13/ucitap/pkg/output"
	"github.com/joeljk13/ucitap/pkg/source"
	"github.com/joeljk13/ucitap/pkg/stats"
	"github.com/joeljk13/ucitap/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// ExtractOptions holds command-line options for the extract command.
type ExtractOptions struct {
	Config    string
	Output    string
	JSONField string
	Summary   bool

	// CloudWatch options
	CWGroup        string
	CWStreamPrefix string
	CWRegion       string
	CWProfile      string
	CWSince        time.Duration

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	opts := &ExtractOptions{}

	cmd := &cobra.Command{
		Use:   "extract [log-file ...]",
		Short: "Extract marker values from engine output",
		Long: `Read engine output and print the captured marker values, one line
per record.

A line produces a record when every configured marker token is followed
by a value. With the default depth/time markers that selects the search
progress lines engines print while thinking:

  info depth 12 seldepth 16 score cp 31 nodes 501234 time 307 pv e2e4

becomes

  12 307

Files are read in order; "-" means stdin (the default). Gzipped files
are decompressed transparently. The source list may include "cloudwatch"
to read a CloudWatch Logs group configured in the config file or via
the --cw-* flags.

Exit codes:
  0 - Stream processed (including zero records)
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file (YAML)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|jsonl|csv)")
	cmd.Flags().StringVar(&opts.JSONField, "json-field", "", "JMESPath of the log text inside JSON-wrapped lines")
	cmd.Flags().BoolVarP(&opts.Summary, "summary", "s", false, "Print a run summary to stderr")

	// CloudWatch flags
	cmd.Flags().StringVar(&opts.CWGroup, "cw-group", "", "Read from this CloudWatch Logs group")
	cmd.Flags().StringVar(&opts.CWStreamPrefix, "cw-stream-prefix", "", "Limit CloudWatch streams to this name prefix")
	cmd.Flags().StringVar(&opts.CWRegion, "cw-region", "", "AWS region for CloudWatch")
	cmd.Flags().StringVar(&opts.CWProfile, "cw-profile", "", "AWS shared config profile")
	cmd.Flags().DurationVar(&opts.CWSince, "cw-since", 0, "How far back to read CloudWatch events (default 24h)")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_records", "When to fire webhook (on_records|always|never)")

	return cmd
}

// RunDefault is the bare invocation: filter stdin to stdout with the
// default depth/time markers. Used by the root command.
func RunDefault(cmd *cobra.Command) error {
	return runExtract(cmd, nil, &ExtractOptions{})
}

func runExtract(cmd *cobra.Command, args []string, opts *ExtractOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)

	// Load configuration
	cfg, err := config.LoadOrDefault(ctx, opts.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyExtractFlags(cfg, args, opts); err != nil {
		return err
	}

	ex, err := buildExtractor(cfg)
	if err != nil {
		return fmt.Errorf("building extractor: %w", err)
	}

	src, err := buildSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	logger.Debug("starting extraction",
		zap.Strings("sources", cfg.Sources),
		zap.Strings("markers", ex.Names()),
		zap.String("format", cfg.Output.Format))

	writer, err := newRecordWriter(cfg.Output.Format, cmd.OutOrStdout(), ex.Names())
	if err != nil {
		return err
	}

	// Run extraction, streaming records as they are found
	a := stats.NewAnalyzer(ex, stats.WithRecordFunc(writer.Write))
	result, err := a.Analyze(ctx, src)
	if err != nil {
		if output.IsBrokenPipe(err) {
			// Downstream consumer (head, less) closed early.
			return nil
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	if err := writer.Flush(); err != nil {
		if output.IsBrokenPipe(err) {
			return nil
		}
		return fmt.Errorf("flushing output: %w", err)
	}

	if fs, ok := src.(*source.FieldSource); ok && fs.Skipped() > 0 {
		logger.Debug("skipped lines without the configured json field",
			zap.Int("lines", fs.Skipped()))
	}
	logger.Debug("extraction finished",
		zap.Int("lines", result.LinesRead),
		zap.Int("records", result.Records),
		zap.Int("incomplete", result.Incomplete))

	// Create report for the summary and webhooks
	report := output.NewReport(result, opts.Config)

	if opts.Summary {
		formatter := output.NewTextFormatter(output.FormatOptions{Quiet: true})
		if err := formatter.Format(ctx, report, cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("formatting summary: %w", err)
		}
	}

	// Send webhooks (errors reported to stderr but don't fail the run)
	sendWebhooks(ctx, collectWebhooks(cfg, opts), report, cmd.ErrOrStderr())

	return nil
}

// applyExtractFlags folds positional arguments and flag overrides into
// the loaded configuration, then re-validates.
func applyExtractFlags(cfg *config.Config, args []string, opts *ExtractOptions) error {
	if len(args) > 0 {
		cfg.Sources = args
	}
	if opts.JSONField != "" {
		cfg.Input.JSONField = opts.JSONField
	}
	if opts.Output != "" {
		cfg.Output.Format = opts.Output
	}

	if opts.CWGroup != "" {
		if cfg.CloudWatch == nil {
			cfg.CloudWatch = &config.CloudWatchConfig{}
		}
		cfg.CloudWatch.Group = opts.CWGroup
		if opts.CWStreamPrefix != "" {
			cfg.CloudWatch.StreamPrefix = opts.CWStreamPrefix
		}
		if opts.CWRegion != "" {
			cfg.CloudWatch.Region = opts.CWRegion
		}
		if opts.CWProfile != "" {
			cfg.CloudWatch.Profile = opts.CWProfile
		}
		if opts.CWSince > 0 {
			cfg.CloudWatch.Since = opts.CWSince
		}
		if !containsSource(cfg.Sources, config.CloudWatchSourceName) {
			// Replace a lone default stdin; otherwise read CloudWatch
			// after the named files.
			if len(args) == 0 && len(cfg.Sources) == 1 && cfg.Sources[0] == source.StdinPath {
				cfg.Sources = []string{config.CloudWatchSourceName}
			} else {
				cfg.Sources = append(cfg.Sources, config.CloudWatchSourceName)
			}
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

func containsSource(sources []string, name string) bool {
	for _, s := range sources {
		if s == name {
			return true
		}
	}
	return false
}

// buildExtractor creates the extractor for the configured markers.
func buildExtractor(cfg *config.Config) (*extract.Extractor, error) {
	markers := make([]extract.Marker, len(cfg.Markers))
	for i, m := range cfg.Markers {
		markers[i] = extract.Marker{Name: m.Name, Token: m.Token}
	}
	return extract.New(markers)
}

// buildSource assembles the configured line sources. Consecutive file
// paths become one sequential file reader; a "cloudwatch" entry becomes
// a CloudWatch Logs reader. The result is wrapped in a JSON field
// selector when input.json_field is set.
func buildSource(ctx context.Context, cfg *config.Config) (source.LineSource, error) {
	var sources []source.LineSource
	var paths []string

	flushPaths := func() error {
		if len(paths) == 0 {
			return nil
		}
		files, err := source.ExpandGlobs(paths)
		if err != nil {
			return fmt.Errorf("expanding source patterns: %w", err)
		}
		sources = append(sources, source.NewFileSource(files))
		paths = nil
		return nil
	}

	for _, s := range cfg.Sources {
		if s != config.CloudWatchSourceName {
			paths = append(paths, s)
			continue
		}
		if err := flushPaths(); err != nil {
			return nil, err
		}
		cws, err := buildCloudWatchSource(ctx, cfg.CloudWatch)
		if err != nil {
			return nil, err
		}
		sources = append(sources, cws)
	}
	if err := flushPaths(); err != nil {
		return nil, err
	}

	var src source.LineSource
	if len(sources) == 1 {
		src = sources[0]
	} else {
		src = source.NewChainSource(sources...)
	}

	if expr := cfg.Input.CompiledField(); expr != nil {
		src = source.NewCompiledFieldSource(src, expr)
	}
	return src, nil
}

func buildCloudWatchSource(ctx context.Context, cw *config.CloudWatchConfig) (source.LineSource, error) {
	client, err := source.NewCloudWatchClient(ctx, cw.Region, cw.Profile)
	if err != nil {
		return nil, fmt.Errorf("creating CloudWatch client: %w", err)
	}

	end := time.Now()
	cws, err := source.NewCloudWatchSource(client, source.CloudWatchOptions{
		Group:        cw.Group,
		StreamPrefix: cw.StreamPrefix,
		Start:        end.Add(-cw.Since),
		End:          end,
	})
	if err != nil {
		return nil, fmt.Errorf("creating CloudWatch source: %w", err)
	}
	return cws, nil
}

// newRecordWriter creates the record writer for the configured format.
func newRecordWriter(format string, w io.Writer, names []string) (output.RecordWriter, error) {
	switch format {
	case config.FormatText, "":
		return output.NewTextWriter(w), nil
	case config.FormatJSONL:
		return output.NewJSONLWriter(w, names), nil
	case config.FormatCSV:
		return output.NewCSVWriter(w, names), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text, jsonl, or csv)", format)
	}
}

// sendWebhooks sends the report to each webhook whose trigger matches.
// Results are reported to errw; failures never fail the run.
func sendWebhooks(ctx context.Context, webhooks []config.WebhookConfig, report *output.Report, errw io.Writer) {
	if len(webhooks) == 0 {
		return
	}
	logger := logging.FromContext(ctx)

	client := webhook.NewClient()

	for _, wh := range webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if !shouldFireWebhook(wh.Trigger, report.HasRecords()) {
			logger.Debug("webhook skipped",
				zap.String("webhook", name),
				zap.String("trigger", string(wh.Trigger)))
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		if resp.Success() {
			fmt.Fprintf(errw, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(errw, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *ExtractOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnRecords
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook fires for this run.
func shouldFireWebhook(trigger config.WebhookTrigger, hasRecords bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	case config.WebhookTriggerOnRecords:
		return hasRecords
	default:
		// Default to on_records
		return hasRecords
	}
}
