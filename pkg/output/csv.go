package output

import (
	"encoding/csv"
	"io"

	"github.com/joeljk13/ucitap/pkg/extract"
)

// CSVWriter streams records as CSV rows with a header of marker names.
// The header is written with the first record, so runs that extract
// nothing produce no output at all.
type CSVWriter struct {
	w           *csv.Writer
	names       []string
	wroteHeader bool
}

// NewCSVWriter creates a csv record writer over w. names are the marker
// names, in the order the record values were captured.
func NewCSVWriter(w io.Writer, names []string) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), names: names}
}

// Write writes one record as a CSV row.
func (c *CSVWriter) Write(rec *extract.Record) error {
	if !c.wroteHeader {
		if err := c.w.Write(c.names); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	return c.w.Write(rec.Values)
}

// Flush flushes buffered output.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// Ensure all writers satisfy the interface
var (
	_ RecordWriter = (*TextWriter)(nil)
	_ RecordWriter = (*JSONLWriter)(nil)
	_ RecordWriter = (*CSVWriter)(nil)
)
