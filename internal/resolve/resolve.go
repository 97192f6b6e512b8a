// Package resolve implements per-language import resolution: mapping an
// import string in a source file to an absolute path within the project
// root.
package resolve

import "codekg/internal/pathutil"

// Resolver maps an import string found in sourceFile to an absolute
// path within projectRoot, or "" if it cannot be resolved (external
// package, missing file, or a path outside the root).
type Resolver interface {
	Resolve(sourceFile, importString, projectRoot string) string
}

// guard applies the root-containment boundary every resolver
// implementation MUST pass its candidate through before returning it.
func guard(projectRoot, candidate string) string {
	if candidate == "" {
		return ""
	}
	if pathutil.HasTraversal(candidate) {
		return ""
	}
	if !pathutil.Contains(projectRoot, candidate) {
		return ""
	}
	return candidate
}

// ForLanguage returns the resolver for a chunk language, or nil if the
// language has no import-resolution rules (e.g. Go/Rust/Java/C++ import
// strings are recorded as dependencies but not resolved to files by
// this package).
func ForLanguage(lang string) Resolver {
	switch lang {
	case "python":
		return &PythonResolver{}
	case "javascript", "typescript":
		return &JSResolver{}
	case "dart":
		return &DartResolver{}
	default:
		return nil
	}
}
