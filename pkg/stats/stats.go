package stats

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/joeljk13/ucitap/pkg/extract"
	"github.com/joeljk13/ucitap/pkg/source"
)

// Analyzer aggregates extraction results over a log stream.
type Analyzer struct {
	ex *extract.Extractor

	// Marker names used for the numeric depth/time aggregates.
	depthName string
	timeName  string

	recordFn func(*extract.Record) error
}

// Option configures analyzer behavior.
type Option func(*Analyzer)

// WithNumericColumns names the markers whose values feed the depth table
// and timing aggregates. Defaults to "depth" and "time"; marker sets
// without both get counts only.
func WithNumericColumns(depthName, timeName string) Option {
	return func(a *Analyzer) {
		a.depthName = depthName
		a.timeName = timeName
	}
}

// WithRecordFunc registers a function called with every emitted record,
// in stream order. An error from the function stops the run.
func WithRecordFunc(fn func(*extract.Record) error) Option {
	return func(a *Analyzer) {
		a.recordFn = fn
	}
}

// NewAnalyzer creates an analyzer over the given extractor.
func NewAnalyzer(ex *extract.Extractor, opts ...Option) *Analyzer {
	a := &Analyzer{
		ex:        ex,
		depthName: "depth",
		timeName:  "time",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// columnIndexes resolves the depth/time marker positions, or -1.
func (a *Analyzer) columnIndexes() (depthIdx, timeIdx int) {
	depthIdx, timeIdx = -1, -1
	for i, name := range a.ex.Names() {
		switch name {
		case a.depthName:
			depthIdx = i
		case a.timeName:
			timeIdx = i
		}
	}
	return depthIdx, timeIdx
}

// Analyze reads the source to EOF and returns aggregate results.
func (a *Analyzer) Analyze(ctx context.Context, src source.LineSource) (*Result, error) {
	result := &Result{
		Metadata: Metadata{
			Markers:   a.ex.Names(),
			StartTime: time.Now(),
		},
	}

	depthIdx, timeIdx := a.columnIndexes()
	numeric := depthIdx >= 0 && timeIdx >= 0

	depths := make(map[int]*DepthStat)
	sourcesMap := make(map[string]*SourceCount)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading log source: %w", err)
		}

		result.LinesRead++

		sc := sourcesMap[line.Source]
		if sc == nil {
			sc = &SourceCount{Source: line.Source}
			sourcesMap[line.Source] = sc
			result.Metadata.Sources = append(result.Metadata.Sources, line.Source)
		}
		sc.Lines++

		expl := a.ex.Explain(line.Text)
		switch expl.Disposition {
		case extract.DispositionEmitted:
			if a.recordFn != nil {
				if err := a.recordFn(expl.Record); err != nil {
					return nil, fmt.Errorf("writing record: %w", err)
				}
			}
			result.Records++
			sc.Records++
			if numeric {
				a.observeNumeric(result, depths, expl.Record, depthIdx, timeIdx)
			}
		case extract.DispositionIncomplete:
			result.Incomplete++
		}
	}

	// Per-source counters in first-seen order
	for _, name := range result.Metadata.Sources {
		result.PerSource = append(result.PerSource, *sourcesMap[name])
	}

	result.Depths = sortedDepths(depths)
	result.Branching = branchingFactor(result.Depths)
	result.Metadata.EndTime = time.Now()

	return result, nil
}

// observeNumeric folds one record into the depth table. Values are kept
// verbatim by extraction, so integer parsing happens here; records that
// don't parse are counted as unparsed and skipped.
func (a *Analyzer) observeNumeric(result *Result, depths map[int]*DepthStat, rec *extract.Record, depthIdx, timeIdx int) {
	depth, derr := strconv.Atoi(rec.Values[depthIdx])
	tms, terr := strconv.ParseInt(rec.Values[timeIdx], 10, 64)
	if derr != nil || terr != nil {
		result.Unparsed++
		return
	}

	ds := depths[depth]
	if ds == nil {
		ds = &DepthStat{Depth: depth}
		depths[depth] = ds
	}
	ds.Records++
	ds.LastTime = tms

	if depth > result.MaxDepth {
		result.MaxDepth = depth
	}
	result.LastTime = tms
}

func sortedDepths(depths map[int]*DepthStat) []DepthStat {
	out := make([]DepthStat, 0, len(depths))
	for _, ds := range depths {
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out
}

// branchingFactor estimates the effective branching factor as the
// geometric mean of per-ply time growth between consecutive depths.
func branchingFactor(depths []DepthStat) float64 {
	var logSum float64
	var n int
	for i := 1; i < len(depths); i++ {
		prev, cur := depths[i-1], depths[i]
		if prev.LastTime <= 0 || cur.LastTime <= 0 {
			continue
		}
		plies := cur.Depth - prev.Depth
		if plies < 1 {
			continue
		}
		ratio := float64(cur.LastTime) / float64(prev.LastTime)
		if ratio <= 0 {
			continue
		}
		logSum += math.Log(ratio) / float64(plies)
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Exp(logSum / float64(n))
}
