package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joeljk13/ucitap/pkg/extract"
)

// TextWriter streams records as plain lines: the captured values joined
// by single spaces, in marker order.
type TextWriter struct {
	w *bufio.Writer
}

// NewTextWriter creates a text record writer over w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write writes one record as a line.
func (t *TextWriter) Write(rec *extract.Record) error {
	if _, err := t.w.WriteString(rec.Text()); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

// Flush flushes buffered output.
func (t *TextWriter) Flush() error {
	return t.w.Flush()
}

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "ucitap: %d lines read, %d records, %d incomplete\n",
		report.Summary.LinesRead,
		report.Summary.Records,
		report.Summary.Incomplete)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	// Header
	fmt.Fprintln(w, "=== Extraction Report ===")
	fmt.Fprintln(w)

	if len(report.Depths) > 0 {
		fmt.Fprintln(w, "Depth  Records  Last time (ms)")
		for _, d := range report.Depths {
			fmt.Fprintf(w, "%5d  %7d  %14d\n", d.Depth, d.Records, d.LastTime)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Max depth: %d\n", report.Summary.MaxDepth)
		if report.Branching > 0 {
			fmt.Fprintf(w, "Branching factor: %.2f\n", report.Branching)
		}
		fmt.Fprintln(w)
	}

	if f.opts.Verbose && len(report.PerSource) > 0 {
		fmt.Fprintln(w, "Per source:")
		for _, sc := range report.PerSource {
			fmt.Fprintf(w, "  %s: %d lines, %d records\n", sc.Source, sc.Lines, sc.Records)
		}
		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d lines read, %d records, %d incomplete\n",
		report.Summary.LinesRead,
		report.Summary.Records,
		report.Summary.Incomplete)

	if report.Summary.Unparsed > 0 {
		fmt.Fprintf(w, "Non-integer values: %d record(s) left out of the depth table\n",
			report.Summary.Unparsed)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	}

	return nil
}
