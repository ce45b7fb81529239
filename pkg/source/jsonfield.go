package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// FieldSource unwraps JSON-wrapped log streams (docker json-file logs,
// CloudWatch JSON events) by selecting the text to filter from each line
// with a JMESPath expression, e.g. "log" or "record.message". Lines that
// fail to decode, or whose expression yields anything but a non-empty
// string, are skipped.
type FieldSource struct {
	inner   LineSource
	expr    *jmespath.JMESPath
	skipped int
}

// NewFieldSource wraps inner with a JMESPath field selection.
func NewFieldSource(inner LineSource, expression string) (*FieldSource, error) {
	expr, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("compiling json field expression %q: %w", expression, err)
	}
	return NewCompiledFieldSource(inner, expr), nil
}

// NewCompiledFieldSource wraps inner with an already compiled expression,
// typically one cached by config validation.
func NewCompiledFieldSource(inner LineSource, expr *jmespath.JMESPath) *FieldSource {
	return &FieldSource{inner: inner, expr: expr}
}

// Next returns the next line whose JSON decodes and whose field resolves.
// Source and line number are the inner source's; only Text is replaced.
func (s *FieldSource) Next(ctx context.Context) (*Line, error) {
	for {
		ln, err := s.inner.Next(ctx)
		if err != nil {
			return nil, err
		}

		var decoded any
		if err := json.Unmarshal([]byte(ln.Text), &decoded); err != nil {
			s.skipped++
			continue
		}

		res, err := s.expr.Search(decoded)
		if err != nil {
			s.skipped++
			continue
		}
		text, ok := res.(string)
		if !ok || text == "" {
			s.skipped++
			continue
		}

		out := *ln
		out.Text = text
		return &out, nil
	}
}

// Skipped reports how many inner lines were dropped for failing to decode
// or resolve.
func (s *FieldSource) Skipped() int {
	return s.skipped
}

// Close releases the inner source.
func (s *FieldSource) Close() error {
	return s.inner.Close()
}
