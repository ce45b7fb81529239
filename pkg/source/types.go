// Package source provides the line sources the filter reads from: local
// files, stdin, JSON-wrapped streams, and CloudWatch Logs.
package source

// Line is a single raw log line with its origin.
type Line struct {
	// Text is the line content without the trailing newline.
	Text string

	// Source identifies where the line came from: a file path, "(stdin)",
	// or a CloudWatch group/stream.
	Source string

	// Num is the 1-based line number within the source.
	Num int
}
