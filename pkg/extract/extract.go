package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Extractor runs lines through a two-phase filter: a substring gate over
// the raw line, then an exact-token scan with last-wins capture. An
// Extractor is immutable and safe for concurrent use.
type Extractor struct {
	markers []Marker
}

// DefaultMarkers returns the classic depth/time marker pair.
func DefaultMarkers() []Marker {
	return []Marker{
		{Name: "depth", Token: "depth"},
		{Name: "time", Token: "time"},
	}
}

// New creates an Extractor for the given markers. Marker order determines
// output order. Tokens must be non-empty, free of whitespace, and unique.
func New(markers []Marker) (*Extractor, error) {
	if len(markers) == 0 {
		return nil, errors.New("at least one marker is required")
	}

	seen := make(map[string]bool, len(markers))
	ms := make([]Marker, len(markers))
	for i, m := range markers {
		if m.Token == "" {
			return nil, fmt.Errorf("marker %d: token is required", i+1)
		}
		if strings.IndexFunc(m.Token, unicode.IsSpace) >= 0 {
			return nil, fmt.Errorf("marker %q: token must not contain whitespace", m.Token)
		}
		if seen[m.Token] {
			return nil, fmt.Errorf("marker %q: duplicate token", m.Token)
		}
		seen[m.Token] = true

		if m.Name == "" {
			m.Name = m.Token
		}
		ms[i] = m
	}

	return &Extractor{markers: ms}, nil
}

// Default returns the extractor for the classic depth/time pair.
func Default() *Extractor {
	e, err := New(DefaultMarkers())
	if err != nil {
		panic(err) // the built-in markers always validate
	}
	return e
}

// Markers returns the marker list in output order.
func (e *Extractor) Markers() []Marker {
	ms := make([]Marker, len(e.markers))
	copy(ms, e.markers)
	return ms
}

// Names returns the marker names in output order.
func (e *Extractor) Names() []string {
	names := make([]string, len(e.markers))
	for i, m := range e.markers {
		names[i] = m.Name
	}
	return names
}

// Extract runs one line through the filter and returns at most one record.
//
// Phase one gates on the RAW line: every marker token must appear as a
// literal substring (so "seldepth" satisfies the gate for "depth"). Phase
// two trims the line, splits it on runs of whitespace, and scans token by
// token: a token equal to a marker token captures the NEXT token as that
// marker's value, overwriting any earlier capture (last-wins). A marker
// that is the final token of the line has no following token; that
// occurrence is skipped and an earlier capture survives. The gate and the
// scan intentionally disagree on near-matches: a line containing "timeout"
// but no standalone "time" token passes the gate and then extracts
// nothing.
//
// The record carries values in marker order regardless of their order in
// the line, and ok reports whether every marker captured a value.
func (e *Extractor) Extract(line string) (rec *Record, ok bool) {
	for i := range e.markers {
		if !strings.Contains(line, e.markers[i].Token) {
			return nil, false
		}
	}

	tokens := strings.Fields(line)
	values := make([]string, len(e.markers))
	for i, tok := range tokens {
		for j := range e.markers {
			if tok != e.markers[j].Token {
				continue
			}
			if i+1 < len(tokens) {
				values[j] = tokens[i+1]
			}
			break
		}
	}

	for _, v := range values {
		if v == "" {
			return nil, false
		}
	}
	return &Record{Values: values}, true
}
