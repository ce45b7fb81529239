package output

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/joeljk13/ucitap/pkg/extract"
)

// JSONLWriter streams records as JSON objects, one per line, keyed by
// marker name in capture order.
type JSONLWriter struct {
	w     *bufio.Writer
	names []string
}

// NewJSONLWriter creates a jsonl record writer over w. names are the
// marker names, in the order the record values were captured.
func NewJSONLWriter(w io.Writer, names []string) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w), names: names}
}

// Write writes one record as a JSON object line. The object is assembled
// by hand because encoding/json sorts map keys, which would lose the
// marker order.
func (j *JSONLWriter) Write(rec *extract.Record) error {
	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, name := range j.names {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		val, err := json.Marshal(rec.Values[i])
		if err != nil {
			return err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	buf = append(buf, '}', '\n')
	_, err := j.w.Write(buf)
	return err
}

// Flush flushes buffered output.
func (j *JSONLWriter) Flush() error {
	return j.w.Flush()
}

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		// Quiet mode: just summary
		return encoder.Encode(report.Summary)
	}

	return encoder.Encode(report)
}
