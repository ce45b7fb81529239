package source

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// drainLines reads a source to EOF and returns everything it produced.
func drainLines(t *testing.T, src LineSource) []*Line {
	t.Helper()
	ctx := context.Background()
	var lines []*Line
	for {
		line, err := src.Next(ctx)
		if err == io.EOF {
			return lines
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		lines = append(lines, line)
	}
}

func TestFileSource_Next(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "engine.log")
	content := `info depth 1 seldepth 1 score cp 20 nodes 20 nps 20000 time 1 pv e2e4
info depth 2 seldepth 2 score cp 15 nodes 120 nps 60000 time 2 pv e2e4 e7e5
bestmove e2e4 ponder e7e5
`
	if err := os.WriteFile(logFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource([]string{logFile})
	defer src.Close()

	lines := drainLines(t, src)
	if len(lines) != 3 {
		t.Fatalf("Got %d lines, want 3", len(lines))
	}
	if lines[0].Num != 1 {
		t.Errorf("Num = %d, want 1", lines[0].Num)
	}
	if lines[0].Source != logFile {
		t.Errorf("Source = %q, want %q", lines[0].Source, logFile)
	}
	if !strings.HasPrefix(lines[0].Text, "info depth 1") {
		t.Errorf("Text = %q, want prefix %q", lines[0].Text, "info depth 1")
	}
	if lines[2].Text != "bestmove e2e4 ponder e7e5" {
		t.Errorf("Text = %q, want bestmove line", lines[2].Text)
	}
}

func TestFileSource_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	file1 := filepath.Join(dir, "game1.log")
	file2 := filepath.Join(dir, "game2.log")
	if err := os.WriteFile(file1, []byte("info depth 1 time 5\ninfo depth 2 time 9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file2, []byte("info depth 3 time 14\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource([]string{file1, file2})
	defer src.Close()

	lines := drainLines(t, src)
	if len(lines) != 3 {
		t.Fatalf("Got %d lines, want 3", len(lines))
	}

	// Files are read sequentially, line numbers restart per file
	if lines[0].Source != file1 || lines[1].Source != file1 {
		t.Errorf("First two lines should come from %q", file1)
	}
	if lines[2].Source != file2 {
		t.Errorf("Source = %q, want %q", lines[2].Source, file2)
	}
	if lines[1].Num != 2 {
		t.Errorf("Num = %d, want 2", lines[1].Num)
	}
	if lines[2].Num != 1 {
		t.Errorf("Num = %d, want 1 (numbering restarts per file)", lines[2].Num)
	}
}

func TestFileSource_PreservesBlankLines(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "engine.log")
	content := "info depth 1 time 5\n\n   \ninfo depth 2 time 9\n"
	if err := os.WriteFile(logFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource([]string{logFile})
	defer src.Close()

	lines := drainLines(t, src)
	if len(lines) != 4 {
		t.Fatalf("Got %d lines, want 4 (blank lines included)", len(lines))
	}
	if lines[1].Text != "" {
		t.Errorf("Text = %q, want empty", lines[1].Text)
	}
	if lines[2].Text != "   " {
		t.Errorf("Text = %q, want whitespace preserved", lines[2].Text)
	}
}

func TestFileSource_GzipBySuffix(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "engine.log.gz")

	fh, err := os.Create(logFile)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte("info depth 8 time 312\ninfo depth 9 time 700\n")); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fh.Close(); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource([]string{logFile})
	defer src.Close()

	lines := drainLines(t, src)
	if len(lines) != 2 {
		t.Fatalf("Got %d lines, want 2", len(lines))
	}
	if lines[0].Text != "info depth 8 time 312" {
		t.Errorf("Text = %q, want decompressed content", lines[0].Text)
	}
}

func TestFileSource_GzipByMagicNumber(t *testing.T) {
	dir := t.TempDir()
	// No .gz suffix; detection falls back to the magic bytes.
	logFile := filepath.Join(dir, "rotated.1")

	fh, err := os.Create(logFile)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte("info depth 12 time 4021\n")); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fh.Close(); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource([]string{logFile})
	defer src.Close()

	lines := drainLines(t, src)
	if len(lines) != 1 {
		t.Fatalf("Got %d lines, want 1", len(lines))
	}
	if lines[0].Text != "info depth 12 time 4021" {
		t.Errorf("Text = %q, want decompressed content", lines[0].Text)
	}
}

func TestFileSource_LongLines(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "engine.log")

	// A deep pv can push an info line well past the default scanner buffer.
	pv := strings.Repeat("e2e4 e7e5 g1f3 b8c6 ", 8000)
	content := "info depth 40 time 99999 pv " + pv + "\n"
	if err := os.WriteFile(logFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource([]string{logFile})
	defer src.Close()

	lines := drainLines(t, src)
	if len(lines) != 1 {
		t.Fatalf("Got %d lines, want 1", len(lines))
	}
	if len(lines[0].Text) < 100000 {
		t.Errorf("Text length = %d, want the whole line", len(lines[0].Text))
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource([]string{"/nonexistent/engine.log"})
	defer src.Close()

	_, err := src.Next(context.Background())
	if err == nil || err == io.EOF {
		t.Fatalf("Next() error = %v, want open failure", err)
	}
	if !strings.Contains(err.Error(), "/nonexistent/engine.log") {
		t.Errorf("error %q should mention the path", err)
	}
}

func TestFileSource_EmptyPathList(t *testing.T) {
	src := NewFileSource(nil)
	defer src.Close()

	_, err := src.Next(context.Background())
	if err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestFileSource_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "engine.log")
	if err := os.WriteFile(logFile, []byte("info depth 1 time 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource([]string{logFile})
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.Next(ctx); err != context.Canceled {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}
