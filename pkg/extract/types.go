// Package extract implements the marker filter that pulls search-progress
// values out of engine log lines.
package extract

import "strings"

// Marker is a literal token whose following token is the value of interest.
type Marker struct {
	// Name is the key used in keyed output formats (jsonl, csv).
	// Defaults to Token when empty.
	Name string

	// Token is matched exactly against whitespace-delimited tokens.
	Token string
}

// Record holds the values captured from a single line, one per marker,
// in marker order. Values are verbatim tokens: the filter never validates
// or normalizes them.
type Record struct {
	Values []string
}

// Text renders the record in the classic output form: values joined by
// single spaces.
func (r *Record) Text() string {
	return strings.Join(r.Values, " ")
}

// Disposition classifies what the filter did with one line.
type Disposition string

const (
	// DispositionEmitted means every marker captured a value and a record
	// was produced.
	DispositionEmitted Disposition = "emitted"

	// DispositionNoMatch means the substring gate failed: at least one
	// marker token does not appear anywhere in the raw line.
	DispositionNoMatch Disposition = "no_match"

	// DispositionIncomplete means the gate passed but the token scan left
	// at least one marker without a value.
	DispositionIncomplete Disposition = "incomplete"
)

// Explanation reports how the filter disposed of one line. It exists for
// the diagnose command; Extract is the hot path.
type Explanation struct {
	// Disposition classifies the outcome.
	Disposition Disposition

	// Record is the extracted record when Disposition is DispositionEmitted.
	Record *Record

	// MissingSubstrings lists marker tokens absent from the raw line
	// (gate phase, substring containment).
	MissingSubstrings []string

	// MissingValues lists markers that captured nothing in the token scan.
	MissingValues []string

	// TrailingSkips lists markers that appeared as the final token of the
	// line, where the skip policy applies.
	TrailingSkips []string

	// SubstringOnly lists markers whose token passed the gate but occurs
	// only inside larger tokens on this line (for example "time" inside
	// "timeout"). These are the classic silent non-matches.
	SubstringOnly []string
}
