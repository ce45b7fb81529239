// Package stats aggregates extraction results over a whole log stream:
// how many lines matched, what depths the engine reached, and how search
// time grew per depth.
package stats

import "time"

// Result contains the complete aggregation output.
type Result struct {
	// LinesRead is the total number of lines examined.
	LinesRead int

	// Records is the number of lines that produced a full record.
	Records int

	// Incomplete is the number of lines that contained every marker as a
	// substring but still produced no record.
	Incomplete int

	// Unparsed is the number of records whose depth or time value was not
	// an integer and so was left out of the numeric aggregates.
	Unparsed int

	// MaxDepth is the deepest depth any record reported.
	MaxDepth int

	// LastTime is the milliseconds value reported by the final record.
	// For a single search this is the total search time.
	LastTime int64

	// Branching estimates the effective branching factor from how search
	// time grew between consecutive depths. Zero when not computable.
	Branching float64

	// Depths lists per-depth aggregates, ordered by depth.
	Depths []DepthStat

	// PerSource lists per-source line and record counts, in the order
	// sources first appeared.
	PerSource []SourceCount

	// Metadata provides context about the run.
	Metadata Metadata
}

// DepthStat aggregates the records that reported one depth.
type DepthStat struct {
	// Depth is the reported search depth.
	Depth int

	// Records is how many records reported this depth.
	Records int

	// LastTime is the milliseconds value of the last record at this depth.
	LastTime int64
}

// SourceCount counts lines and records per source.
type SourceCount struct {
	Source  string
	Lines   int
	Records int
}

// Metadata provides context about the aggregation run.
type Metadata struct {
	// Sources lists the sources lines came from, in first-seen order.
	Sources []string

	// Markers lists the marker names in capture order.
	Markers []string

	// StartTime is when the run began.
	StartTime time.Time

	// EndTime is when the run completed.
	EndTime time.Time
}

// HasNumeric reports whether depth/time aggregates were computed.
func (r *Result) HasNumeric() bool {
	return len(r.Depths) > 0
}
