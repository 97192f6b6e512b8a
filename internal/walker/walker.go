// Package walker discovers source files under a project root, applying
// the default ignore set plus caller-supplied include/exclude globs.
package walker

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path    string // absolute filesystem path
	RelPath string // project-root-relative, forward-slash normalized
	Size    int64
}

// maxFileSize is the largest file considered for chunking (1 MB).
const maxFileSize = 1 << 20

// defaultIgnores are never indexed regardless of include globs.
var defaultIgnores = []string{
	".git",
	"node_modules",
	"venv",
	".venv",
	"__pycache__",
	"target",
	"build",
	"dist",
}

// Scope bundles the include/exclude glob filters for one walk.
type Scope struct {
	Include []string
	Exclude []string
}

// Walk traverses root and sends every file whose extension is in
// extensions (or whose name has no registered chunker, when extensions
// is nil — callers pass nil to let every non-ignored file through to
// the regex/synthetic fallback chunkers) on the returned channel,
// subject to the default ignore set and scope.
func Walk(root string, extensions map[string]bool, scope Scope) (<-chan FileInfo, <-chan error) {
	files := make(chan FileInfo, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		absRoot, err := filepath.Abs(root)
		if err != nil {
			errs <- err
			return
		}

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if path == absRoot {
				return nil
			}

			rel, relErr := filepath.Rel(absRoot, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if isDefaultIgnored(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}

			if !scope.Allows(rel) {
				return nil
			}

			if extensions != nil {
				ext := strings.TrimPrefix(filepath.Ext(path), ".")
				if !extensions[ext] {
					return nil
				}
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}
			if info.Size() > maxFileSize || info.Size() == 0 {
				return nil
			}

			files <- FileInfo{Path: path, RelPath: rel, Size: info.Size()}
			return nil
		})
		if err != nil {
			errs <- err
		}
	}()

	return files, errs
}

func isDefaultIgnored(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, p := range defaultIgnores {
		if name == p {
			return true
		}
	}
	return false
}

// Allows applies exclude-wins-over-include glob matching to a
// project-root-relative path. An empty Include matches everything.
func (s Scope) Allows(relPath string) bool {
	for _, pattern := range s.Exclude {
		if matchGlob(pattern, relPath) {
			return false
		}
	}
	if len(s.Include) == 0 {
		return true
	}
	for _, pattern := range s.Include {
		if matchGlob(pattern, relPath) {
			return true
		}
	}
	return false
}

// matchGlob applies gitignore-style matching: a pattern with no leading
// "/" matches anywhere in the path, not just at its root.
func matchGlob(pattern, path string) bool {
	anchored := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")

	if ok, _ := doublestar.Match(pattern, path); ok {
		return true
	}
	if anchored {
		return false
	}

	segments := strings.Split(path, "/")
	for i := range segments {
		suffix := strings.Join(segments[i:], "/")
		if ok, _ := doublestar.Match(pattern, suffix); ok {
			return true
		}
	}
	return false
}
