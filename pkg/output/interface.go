package output

import (
	"context"
	"io"

	"github.com/joeljk13/ucitap/pkg/extract"
)

// RecordWriter writes extracted records as they stream.
type RecordWriter interface {
	// Write writes a single record.
	Write(rec *extract.Record) error

	// Flush flushes any buffered output.
	Flush() error
}

// Formatter renders run reports in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output including per-source counts.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}
