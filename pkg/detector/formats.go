package detector

import "regexp"

// LineFormat represents a known engine output shape for detection.
type LineFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string for display
	Examples   []string       // Example lines

	// Markers are the marker tokens a starter config should capture for
	// this format, in output order. Empty when marker capture does not
	// apply.
	Markers []string

	// JSONWrapped marks formats whose payload lives inside a JSON field.
	// The pattern's first capture group names the field.
	JSONWrapped bool

	// Positional marks formats whose values are positional columns rather
	// than token-prefixed fields.
	Positional bool

	// Hint is one line of guidance printed with the match.
	Hint string
}

// DefaultFormats returns the built-in engine output formats to detect.
// Formats are ordered roughly by specificity (more specific patterns first).
func DefaultFormats() []*LineFormat {
	formats := []*LineFormat{
		// UCI search progress lines, the main record source
		{
			Name:       "UCI search info",
			PatternStr: `^info\s.*\bdepth\s+\d+`,
			Examples: []string{
				"info depth 12 seldepth 16 multipv 1 score cp 31 nodes 501234 nps 1630342 time 307 pv e2e4 e7e5",
				"info depth 8 currmove d2d4 currmovenumber 2",
			},
			Markers: []string{"depth", "time"},
			Hint:    "token-prefixed fields; the default depth/time markers apply",
		},
		// Engine banners and NNUE notices
		{
			Name:       "UCI info string",
			PatternStr: `^info\s+string\s+\S`,
			Examples: []string{
				"info string NNUE evaluation using nn-ad9b42354671.nnue enabled",
			},
			Hint: "free-form engine messages; they rarely produce records",
		},
		// Handshake and move traffic in both directions
		{
			Name:       "UCI protocol chatter",
			PatternStr: `^(?:id\s+(?:name|author)\s|option\s+name\s|bestmove\s+\S+|position\s+(?:startpos|fen)\b|go\s+\S|uciok\s*$|readyok\s*$|ucinewgame\s*$|isready\s*$|uci\s*$|stop\s*$)`,
			Examples: []string{
				"id name Stockfish 15",
				"bestmove e2e4 ponder e7e5",
				"uciok",
			},
			Hint: "protocol traffic; safe to leave in the stream, it produces no records",
		},
		// XBoard "post" thinking output: ply score time nodes pv
		{
			Name:       "CECP thinking output",
			PatternStr: `^\s*\d+\s+-?\d+\s+\d+\s+\d+\s+\S`,
			Examples: []string{
				"  9  135  87  648727 d4 Nf6 c4 e6 Nc3 Bb4",
			},
			Positional: true,
			Hint:       "positional columns (ply score time nodes pv, time in centiseconds); marker capture cannot read them",
		},
		// Docker json-file logs and similar wrappers
		{
			Name:       "JSON-wrapped engine output",
			PatternStr: `^\s*\{.*"(log|message|msg|text|line)"\s*:\s*"`,
			Examples: []string{
				`{"log":"info depth 10 time 450","stream":"stdout"}`,
			},
			JSONWrapped: true,
			Markers:     []string{"depth", "time"},
			Hint:        "set input.json_field to unwrap the payload before matching",
		},
	}

	// Compile all patterns
	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
