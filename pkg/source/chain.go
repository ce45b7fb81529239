package source

import (
	"context"
	"io"
)

// ChainSource reads several LineSources one after another, like cat over
// a mixed argument list. Each source is closed as it is exhausted.
type ChainSource struct {
	sources []LineSource
	pos     int
}

// NewChainSource creates a sequential source over the given sources.
func NewChainSource(sources ...LineSource) *ChainSource {
	return &ChainSource{sources: sources}
}

// Next returns the next line from the current source, moving on to the
// next one at io.EOF. Returns io.EOF when every source is exhausted.
func (s *ChainSource) Next(ctx context.Context) (*Line, error) {
	for s.pos < len(s.sources) {
		line, err := s.sources[s.pos].Next(ctx)
		if err == io.EOF {
			if cerr := s.sources[s.pos].Close(); cerr != nil {
				return nil, cerr
			}
			s.pos++
			continue
		}
		if err != nil {
			return nil, err
		}
		return line, nil
	}
	return nil, io.EOF
}

// Close closes the sources that have not been exhausted yet.
func (s *ChainSource) Close() error {
	var err error
	for ; s.pos < len(s.sources); s.pos++ {
		if cerr := s.sources[s.pos].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
