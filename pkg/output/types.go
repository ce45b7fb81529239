// Package output renders extracted records and run reports.
package output

import (
	"time"

	"github.com/joeljk13/ucitap/pkg/stats"
)

// Report is the complete run output.
type Report struct {
	// Summary provides aggregate counters.
	Summary Summary

	// Depths lists per-depth aggregates when the marker set includes
	// integer depth and time columns.
	Depths []stats.DepthStat

	// Branching is the effective branching factor estimate, zero when
	// not computable.
	Branching float64

	// PerSource lists per-source line and record counts.
	PerSource []stats.SourceCount

	// Metadata provides context about the run.
	Metadata Metadata
}

// Summary provides aggregate counters.
type Summary struct {
	// LinesRead is the total number of log lines examined.
	LinesRead int

	// Records is the number of lines that produced a full record.
	Records int

	// Incomplete is the number of lines that contained every marker as a
	// substring but produced no record.
	Incomplete int

	// Unparsed is the number of records with non-integer depth or time
	// values.
	Unparsed int

	// MaxDepth is the deepest depth any record reported.
	MaxDepth int
}

// Metadata provides context about the run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string

	// Sources lists the sources that were read.
	Sources []string

	// Markers lists the marker names in capture order.
	Markers []string

	// AnalyzedAt is when the run completed.
	AnalyzedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration
}

// NewReport creates a Report from aggregation results.
func NewReport(result *stats.Result, configFile string) *Report {
	return &Report{
		Summary: Summary{
			LinesRead:  result.LinesRead,
			Records:    result.Records,
			Incomplete: result.Incomplete,
			Unparsed:   result.Unparsed,
			MaxDepth:   result.MaxDepth,
		},
		Depths:    result.Depths,
		Branching: result.Branching,
		PerSource: result.PerSource,
		Metadata: Metadata{
			ConfigFile: configFile,
			Sources:    result.Metadata.Sources,
			Markers:    result.Metadata.Markers,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
	}
}

// HasRecords returns true if any records were extracted.
func (r *Report) HasRecords() bool {
	return r.Summary.Records > 0
}
