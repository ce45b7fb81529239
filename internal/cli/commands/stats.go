package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joeljk13/ucitap/internal/logging"
	"github.com/joeljk13/ucitap/pkg/config"
	"github.com/joeljk13/ucitap/pkg/output"
	"github.com/joeljk13/ucitap/pkg/stats"
)

// StatsOptions holds command-line options for the stats command.
type StatsOptions struct {
	Config    string
	Output    string
	JSONField string
	Verbose   bool
	Quiet     bool
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	opts := &StatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats [log-file ...]",
		Short: "Summarize search progress in engine output",
		Long: `Read engine output and report aggregate search statistics instead of
the raw records: lines read, records found, deepest search, time per
depth, and the effective branching factor implied by the time growth.

Reads stdin when no file is given. Use --output json for a report
suitable for scripts and dashboards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file (YAML)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.JSONField, "json-field", "", "JMESPath of the log text inside JSON-wrapped lines")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-source and per-depth detail")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Print only the one-line summary")

	return cmd
}

func runStats(cmd *cobra.Command, args []string, opts *StatsOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)

	cfg, err := config.LoadOrDefault(ctx, opts.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(args) > 0 {
		cfg.Sources = args
	}
	if opts.JSONField != "" {
		cfg.Input.JSONField = opts.JSONField
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
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

	logger.Debug("starting analysis",
		zap.Strings("sources", cfg.Sources),
		zap.Strings("markers", ex.Names()))

	a := stats.NewAnalyzer(ex)
	result, err := a.Analyze(ctx, src)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, opts.Config)

	formatter, err := createFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	sendWebhooks(ctx, cfg.Webhooks, report, cmd.ErrOrStderr())

	return nil
}

// createFormatter creates the report formatter for the requested format.
func createFormatter(format string, opts output.FormatOptions) (output.Formatter, error) {
	switch format {
	case "text":
		return output.NewTextFormatter(opts), nil
	case "json":
		return output.NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", format)
	}
}
