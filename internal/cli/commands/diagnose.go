package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeljk13/ucitap/pkg/config"
	"github.com/joeljk13/ucitap/pkg/extract"
)

// DiagnoseOptions holds command-line options for the diagnose command.
type DiagnoseOptions struct {
	Config  string
	Limit   int
	Verbose bool
}

// NewDiagnoseCommand creates the diagnose command.
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [log-file ...]",
		Short: "Explain why lines did or did not produce records",
		Long: `Walk engine output line by line and explain each outcome. The main
use is finding lines that pass the substring check but never produce a
record, typically because a marker token only occurs inside a longer
token ("time" inside "timeout") or appears last on the line with no
value after it.

Reads stdin when no file is given.

Exit codes:
  0 - No problem lines found
  1 - Some lines passed the substring check without producing a record
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file (YAML)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum lines to show in detail (0 = unlimited)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Also show matched and gate-filtered lines")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string, opts *DiagnoseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadOrDefault(ctx, opts.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(args) > 0 {
		cfg.Sources = args
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

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "=== Extraction Diagnostics ===")
	fmt.Fprintln(w)

	var lines, records, incomplete, gateFiltered, shown, hidden int
	underLimit := func() bool {
		return opts.Limit == 0 || shown < opts.Limit
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading log source: %w", err)
		}
		lines++

		expl := ex.Explain(line.Text)
		switch expl.Disposition {
		case extract.DispositionEmitted:
			records++
			if opts.Verbose {
				if underLimit() {
					fmt.Fprintf(w, "[PASS] %s:%d  %s\n", line.Source, line.Num, expl.Record.Text())
					shown++
				} else {
					hidden++
				}
			}

		case extract.DispositionIncomplete:
			incomplete++
			if underLimit() {
				fmt.Fprintf(w, "[MISS] %s:%d\n", line.Source, line.Num)
				fmt.Fprintf(w, "  %s\n", truncate(line.Text, 100))
				fmt.Fprintf(w, "  No value captured for: %s\n", strings.Join(expl.MissingValues, ", "))
				for _, token := range expl.SubstringOnly {
					fmt.Fprintf(w, "  Hint: %q only occurs inside longer tokens on this line\n", token)
				}
				for _, name := range expl.TrailingSkips {
					fmt.Fprintf(w, "  Hint: %q is the last token; the trailing occurrence is skipped\n", name)
				}
				fmt.Fprintln(w)
				shown++
			} else {
				hidden++
			}

		case extract.DispositionNoMatch:
			gateFiltered++
			if opts.Verbose {
				if underLimit() {
					fmt.Fprintf(w, "[SKIP] %s:%d  missing %s\n", line.Source, line.Num,
						strings.Join(expl.MissingSubstrings, ", "))
					shown++
				} else {
					hidden++
				}
			}
		}
	}

	if hidden > 0 {
		fmt.Fprintf(w, "... %d more lines not shown (raise --limit to see them)\n", hidden)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d lines, %d records, %d gate-passed without a record, %d gate-filtered\n",
		lines, records, incomplete, gateFiltered)

	if incomplete > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Some lines passed the substring check but produced no record.")
		fmt.Fprintln(w, "Markers hidden inside longer tokens (timeout, seldepth) are the usual cause.")
		ExitCode = 1
	}

	return nil
}

// truncate shortens a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
