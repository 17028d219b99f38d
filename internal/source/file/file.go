// Package file implements source.Source over a local directory tree.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"lakeetl/internal/source"
)

// Source reads raw files under a root directory.
type Source struct {
	root string
}

var _ source.Source = (*Source)(nil)

// New returns a Source rooted at dir. The directory is not required to exist
// yet; Glob reports source.ErrUnavailable when it does not.
func New(dir string) *Source {
	return &Source{root: dir}
}

// Glob resolves pattern relative to the root. Zero matches and an unreadable
// root both surface as source.ErrUnavailable so that a misconfigured run
// aborts instead of producing silently empty tables.
func (s *Source) Glob(_ context.Context, pattern string) ([]string, error) {
	if _, err := os.Stat(s.root); err != nil {
		return nil, fmt.Errorf("stat root %s: %v: %w", s.root, err, source.ErrUnavailable)
	}
	matches, err := filepath.Glob(filepath.Join(s.root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("glob %q under %s matched no files: %w", pattern, s.root, source.ErrUnavailable)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(s.root, m)
		if err != nil {
			return nil, fmt.Errorf("rel %s: %w", m, err)
		}
		names = append(names, filepath.ToSlash(rel))
	}
	sort.Strings(names)
	return names, nil
}

// Open opens one file relative to the root.
func (s *Source) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}
