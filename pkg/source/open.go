package source

import (
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// StdinPath is the conventional path meaning "read standard input".
const StdinPath = "-"

// stdinName labels stdin lines in Line.Source and reports.
const stdinName = "(stdin)"

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// openReader opens path for reading. "-" means stdin (never closed).
// Gzipped files are detected by magic number (1F 8B) or .gz suffix and
// decompressed transparently; stdin is never sniffed.
func openReader(path string) (io.ReadCloser, error) {
	if path == StdinPath {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	_, _ = fh.Seek(0, io.SeekStart)
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}

// displayName maps a path to the name used in Line.Source.
func displayName(path string) string {
	if path == StdinPath {
		return stdinName
	}
	return path
}
