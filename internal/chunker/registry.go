package chunker

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageSpec defines the tree-sitter grammar and queries for a
// tree-sitter-backed language. Dependency extraction and complexity
// counting are keyed by language name in dependencies.go and
// complexity.go rather than on this struct, since both need per-language
// logic beyond a single pattern or node-type set.
type LanguageSpec struct {
	Language *sitter.Language
	// Query is a tree-sitter S-expression query that captures top-level
	// or class-scoped definitions. It must use @chunk for the outer node
	// and @name for the identifier (optional).
	Query string
	// UsageQuery captures call/decorator/instantiate/reference sites
	// within a chunk body. Capture names @call, @decorator, @instantiate,
	// @reference map directly to model usage kinds.
	UsageQuery string
	Extensions []string
}

// Registry maps file extensions to language specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*LanguageSpec // extension (without dot) → spec
	langs map[string]*LanguageSpec // language name → spec
	names map[*LanguageSpec]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]*LanguageSpec),
		langs: make(map[string]*LanguageSpec),
		names: make(map[*LanguageSpec]string),
	}
}

// Register adds a language spec under the given name.
func (r *Registry) Register(name string, spec *LanguageSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.langs[name] = spec
	r.names[spec] = name
	for _, ext := range spec.Extensions {
		r.specs[ext] = spec
	}
}

// Lookup returns the spec for a file path based on its extension, or nil.
func (r *Registry) Lookup(path string) (spec *LanguageSpec, lang string) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[ext]
	if !ok {
		return nil, ""
	}
	return s, r.names[s]
}

// LanguageName returns the language name for a file path, or "".
func (r *Registry) LanguageName(path string) string {
	_, lang := r.Lookup(path)
	return lang
}

// Extensions returns the set of all registered file extensions (without dot).
func (r *Registry) Extensions() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make(map[string]bool, len(r.specs))
	for ext := range r.specs {
		exts[ext] = true
	}
	return exts
}
