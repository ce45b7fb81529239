// Package detector identifies what kind of engine output a log contains.
package detector

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/joeljk13/ucitap/pkg/source"
)

// DetectionResult holds the result of analyzing a log sample.
type DetectionResult struct {
	Matches      []FormatMatch // Formats that matched, sorted by confidence descending
	SampledLines int           // Number of lines sampled
	MatchedLines int           // Lines matched by the best format
	Note         string        // Warning when the best format does not fit marker capture
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format     *LineFormat
	Confidence float64 // 0.0 to 1.0 (fraction of sampled lines matched)
	MatchCount int     // Number of lines that matched
	SampleLine string  // Example line that matched
	Field      string  // Captured JSON field name for wrapped formats
}

// Detector analyzes log samples to identify engine output formats.
type Detector struct {
	formats    []*LineFormat
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    DefaultFormats(),
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromSource samples up to the configured number of lines from a
// source and returns detected formats.
func (d *Detector) DetectFromSource(ctx context.Context, src source.LineSource) (*DetectionResult, error) {
	lines, err := d.sampleSource(ctx, src)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of log lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		SampledLines: len(lines),
	}

	if len(lines) == 0 {
		return result
	}

	// Track matches per format
	type formatStats struct {
		format     *LineFormat
		matchCount int
		sampleLine string
		field      string
	}

	stats := make(map[string]*formatStats)

	// Test each line against all formats
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for _, format := range d.formats {
			matches := format.Pattern.FindStringSubmatch(line)
			if matches == nil {
				continue
			}

			// A JSON-looking line that doesn't actually decode is noise
			if format.JSONWrapped && !json.Valid([]byte(line)) {
				continue
			}

			key := format.Name
			if stats[key] == nil {
				s := &formatStats{
					format:     format,
					sampleLine: line,
				}
				if format.JSONWrapped && len(matches) > 1 {
					s.field = matches[1]
				}
				stats[key] = s
			}
			stats[key].matchCount++
		}
	}

	// Convert to FormatMatch slice
	for _, s := range stats {
		result.Matches = append(result.Matches, FormatMatch{
			Format:     s.format,
			Confidence: float64(s.matchCount) / float64(len(lines)),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
			Field:      s.field,
		})
	}

	// Sort by confidence descending, then by pattern length (more specific first)
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].Confidence != result.Matches[j].Confidence {
			return result.Matches[i].Confidence > result.Matches[j].Confidence
		}
		// For same confidence, prefer longer patterns (more specific)
		return len(result.Matches[i].Format.PatternStr) > len(result.Matches[j].Format.PatternStr)
	})

	if len(result.Matches) > 0 {
		result.MatchedLines = result.Matches[0].MatchCount
	}

	// Flag samples whose dominant shape can't feed marker capture
	if len(result.Matches) > 0 && result.Matches[0].Format.Positional {
		result.Note = "The dominant format uses positional columns. Marker capture reads the " +
			"token after a marker, so these lines produce no records. Switch the engine to " +
			"UCI output, or post-process the columns into token-prefixed fields."
	}

	return result
}

// sampleSource reads up to sampleSize non-blank lines from a source.
// Uses simple head sampling for efficiency.
func (d *Detector) sampleSource(ctx context.Context, src source.LineSource) ([]string, error) {
	var lines []string
	for len(lines) < d.sampleSize {
		line, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line.Text) != "" {
			lines = append(lines, line.Text)
		}
	}
	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
