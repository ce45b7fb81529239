package source

import (
	"fmt"
	"path/filepath"
)

// ExpandGlobs expands a list of file paths and glob patterns into a
// deduplicated list of matching file paths. "-" (stdin) passes through
// unglobbed. Patterns that don't match any files are returned as-is
// (the caller should handle file-not-found errors). First-appearance
// order is preserved so multi-file streams concatenate the way they were
// named; matches within one pattern come back in filepath.Glob's sorted
// order.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		if pattern == StdinPath {
			add(pattern)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			// Pattern didn't match anything - include it as literal path
			// This allows for explicit file paths and better error messages later
			add(pattern)
			continue
		}

		for _, match := range matches {
			add(match)
		}
	}

	return result, nil
}
