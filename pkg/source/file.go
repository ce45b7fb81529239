package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// FileSource implements LineSource for reading local files and stdin.
// Paths are read sequentially, in order, like cat.
type FileSource struct {
	paths []string

	current       io.ReadCloser
	scanner       *bufio.Scanner
	currentSource string
	currentLine   int
	pathIndex     int
}

// NewFileSource creates a LineSource over the given paths. "-" means
// stdin and gzipped files are decompressed transparently.
func NewFileSource(paths []string) *FileSource {
	return &FileSource{
		paths:     paths,
		pathIndex: -1,
	}
}

// Next returns the next raw line. Every physical line is returned, blank
// or not; filtering is the extractor's job. Returns io.EOF when all paths
// have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*Line, error) {
	for {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Ensure we have a stream open
		if s.scanner == nil {
			if err := s.openNext(); err != nil {
				return nil, err
			}
		}

		if s.scanner.Scan() {
			s.currentLine++
			return &Line{
				Text:   s.scanner.Text(),
				Source: s.currentSource,
				Num:    s.currentLine,
			}, nil
		}

		// Check for scanner error
		if err := s.scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		// Current stream exhausted, try next
		if err := s.closeCurrent(); err != nil {
			return nil, err
		}
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrent()
}

func (s *FileSource) openNext() error {
	s.pathIndex++
	if s.pathIndex >= len(s.paths) {
		return io.EOF
	}

	path := s.paths[s.pathIndex]
	rc, err := openReader(path)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	s.current = rc
	s.scanner = bufio.NewScanner(rc)
	s.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size
	s.currentSource = displayName(path)
	s.currentLine = 0

	return nil
}

func (s *FileSource) closeCurrent() error {
	if s.current != nil {
		err := s.current.Close()
		s.current = nil
		s.scanner = nil
		return err
	}
	s.scanner = nil
	return nil
}
