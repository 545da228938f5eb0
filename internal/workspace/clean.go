package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Clean removes the files in the old and new folders that match the
// workspace's cleanup patterns and returns how many were removed. Missing
// folders are not an error.
func (w *Workspace) Clean() (int, error) {
	removed := 0
	for _, dir := range []string{w.dirs.Old, w.dirs.New} {
		n, err := cleanDir(dir, w.patterns)
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func cleanDir(dir string, patterns []string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("workspace: reading %s: %w", dir, err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !Matches(e.Name(), patterns) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("workspace: removing %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// Matches reports whether relPath, or its base name, matches any of the
// glob patterns. Patterns may use ** and {a,b} alternation.
func Matches(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// Expand resolves glob patterns against the file system and returns the
// matching files in pattern order without duplicates. A pattern with no
// glob syntax is returned as is so that missing files surface later.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 && !hasMeta(p) {
			matches = []string{p}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func hasMeta(p string) bool {
	for _, r := range p {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
