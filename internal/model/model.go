// Package model holds the domain types shared across the indexing and
// retrieval pipeline: chunks, usages, edges, and the error taxonomy.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Supported language tags.
const (
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangGo         = "go"
	LangRust       = "rust"
	LangJava       = "java"
	LangCPP        = "cpp"
	LangDart       = "dart"
	LangSQL        = "sql"
	LangHTML       = "html"
	LangCSS        = "css"
	LangFirestore  = "firestore"
	LangMarkdown   = "markdown"
)

// Symbol kinds a chunk can carry.
const (
	KindFunction    = "function"
	KindClass       = "class"
	KindMethod      = "method"
	KindVariable    = "variable"
	KindConstant    = "constant"
	KindMatchPath   = "match_path"
	KindDiagramNode = "diagram_node"
	KindChunk       = "chunk"
)

// Usage kinds recorded by the parser.
const (
	UsageCall           = "call"
	UsageDecorator      = "decorator"
	UsageInstantiation  = "instantiation"
	UsageReference      = "reference"
	UsageMatchTarget    = "match_target"
)

// Edge kinds persisted in the knowledge graph.
const (
	EdgeCall        = "call"
	EdgeImport      = "import"
	EdgeInherit     = "inherit"
	EdgeInstantiate = "instantiate"
	EdgeDecorator   = "decorator"
	EdgeReference   = "reference"
)

// Edge confidence levels.
const (
	ConfidenceStructural = "structural"
	ConfidenceNameMatch  = "name_match"
)

// Chunk is the atomic semantic unit produced by the parser and persisted
// by the vector store.
type Chunk struct {
	ID           string
	Filename     string
	Language     string
	SymbolName   string
	SymbolKind   string
	StartLine    int
	EndLine      int
	Content      string
	Signature    string
	Complexity   int
	Dependencies []string
	Author       *string
	LastModified *string
	ContentHash  string
	Vector       []float32
}

// ChunkID computes the stable chunk identifier per spec:
// sha256(filename + ":" + symbol_name + ":" + start_line)[:32].
func ChunkID(filename, symbolName string, startLine int) string {
	raw := fmt.Sprintf("%s:%s:%d", filename, symbolName, startLine)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:32]
}

// Usage is a transient record produced by the parser and consumed by the
// linker; it is never persisted directly.
type Usage struct {
	ContainingChunkID string
	ReferencedName    string
	Kind              string
	Context           string
}

// Edge is a persisted relation between two chunks.
type Edge struct {
	SourceID   string
	TargetID   string
	Kind       string
	Confidence string
	Project    string
}

// SearchResult is a chunk annotated with its retrieval score.
type SearchResult struct {
	Chunk        Chunk
	Score        float64
	MatchedBy    string // "vector" | "keyword"
}

// DefinitionCandidate is a find_definition result.
type DefinitionCandidate struct {
	Chunk      Chunk
	Confidence string
}

// ReferenceResult is a find_references result.
type ReferenceResult struct {
	Chunk      Chunk
	Kind       string
	Confidence string
}

// Stats summarizes a project's indexed state.
type Stats struct {
	TotalChunks      int
	LanguageCounts   map[string]int
	TopDependencies  []DependencyCount
	HighRiskSymbols  []Chunk
	ActiveBranch     string
	StaleFileCount   int
}

// DependencyCount is a single entry in a dependency-hub ranking.
type DependencyCount struct {
	Name  string
	Count int
}

// RefreshStats reports the outcome of an index refresh.
type RefreshStats struct {
	Indexed   int
	Skipped   int
	Chunks    int
	ElapsedMS int64
	Errors    []FileError
}

// FileError records a single per-file error surfaced in a refresh result.
type FileError struct {
	File string
	Kind string
	Msg  string
}
