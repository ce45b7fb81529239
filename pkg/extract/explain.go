package extract

import "strings"

// Explain runs one line through the same two phases as Extract and reports
// the disposition. The returned record (when emitted) is identical to what
// Extract would have produced for the line.
func (e *Extractor) Explain(line string) Explanation {
	var ex Explanation

	for i := range e.markers {
		if !strings.Contains(line, e.markers[i].Token) {
			ex.MissingSubstrings = append(ex.MissingSubstrings, e.markers[i].Token)
		}
	}
	if len(ex.MissingSubstrings) > 0 {
		ex.Disposition = DispositionNoMatch
		return ex
	}

	tokens := strings.Fields(line)
	values := make([]string, len(e.markers))
	exact := make([]bool, len(e.markers)) // marker token seen as a standalone token
	for i, tok := range tokens {
		for j := range e.markers {
			if tok != e.markers[j].Token {
				continue
			}
			exact[j] = true
			if i+1 < len(tokens) {
				values[j] = tokens[i+1]
			} else {
				ex.TrailingSkips = append(ex.TrailingSkips, e.markers[j].Name)
			}
			break
		}
	}

	complete := true
	for j, v := range values {
		if v != "" {
			continue
		}
		complete = false
		ex.MissingValues = append(ex.MissingValues, e.markers[j].Name)
		if !exact[j] {
			// The gate saw the token, the scan never did: it only occurs
			// inside larger tokens on this line.
			ex.SubstringOnly = append(ex.SubstringOnly, e.markers[j].Token)
		}
	}

	if !complete {
		ex.Disposition = DispositionIncomplete
		return ex
	}

	ex.Disposition = DispositionEmitted
	ex.Record = &Record{Values: values}
	return ex
}
