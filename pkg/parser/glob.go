package parser

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandGlobs resolves input arguments to files. Each argument may be a plain
// path or a doublestar pattern ("logs/**/*.log"). Arguments keep their
// command-line order; the files one pattern matches are sorted, directories
// are skipped and duplicates are dropped. An argument that matches nothing is
// returned unchanged, so opening it later reports the path as not found.
func ExpandGlobs(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		matches, err := globFiles(arg)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			add(arg)
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}
	return files, nil
}

func globFiles(pattern string) ([]string, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
