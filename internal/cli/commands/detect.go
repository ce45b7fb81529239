package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeljk13/ucitap/pkg/detector"
	"github.com/joeljk13/ucitap/pkg/source"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect [log-file]",
		Short: "Identify the engine output format in a log",
		Long: `Sample a log and identify what kind of engine output it contains:
UCI search info, CECP thinking output, JSON-wrapped lines, and so on.
Prints the matched format with a configuration snippet for it.

Reads stdin when no file is given. Use --write-config to write a
starter config file for the detected format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVar(&opts.SampleSize, "sample", 100, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all matching formats, not just the best")
	cmd.Flags().StringVar(&opts.WriteConfig, "write-config", "", "Write a starter config file for the detected format")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logFile := source.StdinPath
	if len(args) > 0 {
		logFile = args[0]
	}
	if logFile != source.StdinPath {
		if _, err := os.Stat(logFile); err != nil {
			return fmt.Errorf("log file not found: %s", logFile)
		}
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	src := source.NewFileSource([]string{logFile})
	defer src.Close()

	result, err := d.DetectFromSource(ctx, src)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(cmd.OutOrStdout(), opts.WriteConfig, logFile, result); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(cmd.OutOrStdout(), logFile, result, opts.ShowAll)
	default:
		return outputDetectText(cmd.OutOrStdout(), logFile, result, opts.ShowAll)
	}
}

func outputDetectText(w io.Writer, logFile string, result *detector.DetectionResult, showAll bool) error {
	fmt.Fprintln(w, "=== Engine Output Detection ===")
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines matching best format: %d\n", result.MatchedLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No known engine output format detected.")
		fmt.Fprintln(w, "Tip: run the engine with UCI 'go' commands, or check that the")
		fmt.Fprintln(w, "log is not wrapped in a format detect does not know.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines matched)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	if best.SampleLine != "" {
		fmt.Fprintf(w, "Sample match:\n  %s\n", truncate(best.SampleLine, 100))
	}
	if best.Format.Hint != "" {
		fmt.Fprintf(w, "Note: %s\n", best.Format.Hint)
	}
	if best.Field != "" {
		fmt.Fprintf(w, "JSON text field: %s\n", best.Field)
	}
	if result.Note != "" {
		fmt.Fprintf(w, "WARNING: %s\n", result.Note)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w, "markers:")
	for _, m := range snippetMarkers(best) {
		fmt.Fprintf(w, "  - token: %s\n", m)
	}
	if best.Field != "" {
		fmt.Fprintln(w, "input:")
		fmt.Fprintf(w, "  json_field: %s\n", best.Field)
	}

	if showAll && len(result.Matches) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Other formats detected ---")
		for _, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%s: %.1f%% (%d lines)\n", m.Format.Name, m.Confidence*100, m.MatchCount)
			fmt.Fprintf(w, "  pattern: %s\n", m.Format.PatternStr)
		}
	}

	return nil
}

func outputDetectJSON(w io.Writer, logFile string, result *detector.DetectionResult, showAll bool) error {
	type JSONMatch struct {
		Name       string   `json:"name"`
		Pattern    string   `json:"pattern"`
		Confidence float64  `json:"confidence"`
		MatchCount int      `json:"match_count"`
		SampleLine string   `json:"sample_line"`
		Markers    []string `json:"markers,omitempty"`
		JSONField  string   `json:"json_field,omitempty"`
	}
	type JSONOutput struct {
		File         string      `json:"file"`
		Matches      []JSONMatch `json:"matches"`
		SampledLines int         `json:"sampled_lines"`
		MatchedLines int         `json:"matched_lines"`
		Note         string      `json:"note,omitempty"`
	}

	matches := result.Matches
	if !showAll && len(matches) > 1 {
		matches = matches[:1]
	}

	out := JSONOutput{
		File:         logFile,
		Matches:      make([]JSONMatch, 0, len(matches)),
		SampledLines: result.SampledLines,
		MatchedLines: result.MatchedLines,
		Note:         result.Note,
	}
	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Format.Name,
			Pattern:    m.Format.PatternStr,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
			Markers:    m.Format.Markers,
			JSONField:  m.Field,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeStarterConfig writes a config file for the detected format.
// Refuses to overwrite an existing file.
func writeStarterConfig(w io.Writer, path, logFile string, result *detector.DetectionResult) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", path)
	}
	if !result.HasMatch() {
		return fmt.Errorf("no format detected, not writing %s", path)
	}

	content := generateStarterConfig(logFile, result.BestMatch())
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { // #nosec G306
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", path)
	return nil
}

// generateStarterConfig builds the YAML for a starter config file.
func generateStarterConfig(logFile string, match *detector.FormatMatch) string {
	var b strings.Builder

	b.WriteString("# ucitap configuration\n")
	b.WriteString("# Generated by: ucitap detect\n")
	fmt.Fprintf(&b, "# Detected format: %s (%.0f%% confidence)\n", match.Format.Name, match.Confidence*100)
	b.WriteString("\n")

	b.WriteString("sources:\n")
	src := logFile
	if src != source.StdinPath {
		if abs, err := filepath.Abs(logFile); err == nil {
			src = abs
		}
	}
	fmt.Fprintf(&b, "  - %q\n", src)
	b.WriteString("  # Globs work too:\n")
	b.WriteString("  # - \"logs/*.log\"\n")
	b.WriteString("  # Add \"cloudwatch\" to read a CloudWatch Logs group as well.\n")
	b.WriteString("\n")

	b.WriteString("markers:\n")
	for _, m := range snippetMarkers(match) {
		fmt.Fprintf(&b, "  - token: %s\n", m)
	}
	b.WriteString("\n")

	if match.Field != "" {
		b.WriteString("input:\n")
		fmt.Fprintf(&b, "  json_field: %s\n", match.Field)
		b.WriteString("\n")
	}

	b.WriteString("output:\n")
	b.WriteString("  format: text   # text | jsonl | csv\n")
	b.WriteString("\n")

	b.WriteString("# cloudwatch:\n")
	b.WriteString("#   group: /engines/match-server\n")
	b.WriteString("#   region: us-east-1\n")
	b.WriteString("#   since: 24h\n")
	b.WriteString("\n")
	b.WriteString("# webhooks:\n")
	b.WriteString("#   - name: dashboard\n")
	b.WriteString("#     url: https://example.com/hooks/ucitap\n")
	b.WriteString("#     trigger: on_records\n")

	return b.String()
}

// snippetMarkers returns the marker tokens a config for this format
// should capture. Formats without marker capture fall back to the
// default depth/time pair.
func snippetMarkers(match *detector.FormatMatch) []string {
	if len(match.Format.Markers) > 0 {
		return match.Format.Markers
	}
	return []string{"depth", "time"}
}
