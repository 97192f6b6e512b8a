// Package parser assembles the chunker registry and every per-language
// chunker into the single Dispatcher the indexer drives. It exists
// separately from internal/chunker so that internal/chunker/languages
// can import internal/chunker's Registry/LanguageSpec without chunker
// importing languages back.
package parser

import (
	"path/filepath"
	"strings"

	"codekg/internal/chunker"
	"codekg/internal/chunker/languages"
	"codekg/internal/model"
)

// Chunker turns a file's bytes into chunks and usages. chunker.ASTChunker
// and each of the regex-based languages.*Chunker implementations satisfy
// this shape.
type Chunker interface {
	Chunk(filename string, src []byte) ([]model.Chunk, []model.Usage, error)
}

// Dispatcher routes a file to the AST chunker when a tree-sitter
// grammar is registered for it, otherwise to the matching regex
// chunker, and otherwise to a synthetic whole-file chunk.
type Dispatcher struct {
	ast      *chunker.ASTChunker
	registry *chunker.Registry
	regex    map[string]Chunker
}

// NewDispatcher builds a Dispatcher with every tree-sitter language
// registered plus the Firestore/SQL/Dart/Markdown regex chunkers.
func NewDispatcher() *Dispatcher {
	r := chunker.NewRegistry()
	languages.RegisterAll(r)

	regex := map[string]Chunker{}
	for _, c := range []Chunker{
		languages.FirestoreChunker{},
		languages.SQLChunker{},
		languages.DartChunker{},
		languages.MarkdownChunker{},
	} {
		for _, ext := range chunkerExtensions(c) {
			regex[ext] = c
		}
	}

	return &Dispatcher{
		ast:      chunker.NewASTChunker(r),
		registry: r,
		regex:    regex,
	}
}

// chunkerExtensions pulls the Extensions() list off any of the
// regex-based languages.*Chunker types without requiring a shared
// interface for just that method.
func chunkerExtensions(c Chunker) []string {
	type extensionser interface {
		Extensions() []string
	}
	if e, ok := c.(extensionser); ok {
		return e.Extensions()
	}
	return nil
}

// extraExtensions have no dedicated chunker (tree-sitter or regex) but
// are still worth indexing as synthetic whole-file chunks, per the
// language enum's html/css entries.
var extraExtensions = []string{"html", "css"}

// Extensions returns every file extension the dispatcher will route to
// a real chunker or a synthetic whole-file fallback, for the walker to
// filter on.
func (d *Dispatcher) Extensions() map[string]bool {
	exts := d.registry.Extensions()
	for ext := range d.regex {
		exts[ext] = true
	}
	for _, ext := range extraExtensions {
		exts[ext] = true
	}
	return exts
}

// ChunkFile parses filename's source into chunks and usages, choosing
// the AST chunker, a regex chunker, or a synthetic whole-file fallback
// based on its extension.
func (d *Dispatcher) ChunkFile(filename string, src []byte) ([]model.Chunk, []model.Usage, error) {
	if spec, _ := d.registry.Lookup(filename); spec != nil {
		return d.ast.Chunk(filename, src)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if c, ok := d.regex[ext]; ok {
		return c.Chunk(filename, src)
	}

	if strings.TrimSpace(string(src)) == "" {
		return nil, nil, nil
	}
	return []model.Chunk{chunker.SyntheticChunk(filename, ext, src, nil)}, nil, nil
}
