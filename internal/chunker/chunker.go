// Package chunker implements the Parser component: it walks a file's
// AST (or, for languages without a tree-sitter grammar in this build,
// a lighter structural scan) and produces the chunks and usages the
// rest of the pipeline embeds, stores, and links.
package chunker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codekg/internal/model"
)

const maxChunkBytes = 8192

// ASTChunker parses source files using tree-sitter and extracts semantic
// chunks plus their usages.
type ASTChunker struct {
	registry *Registry
}

// NewASTChunker creates a chunker backed by the given registry.
func NewASTChunker(r *Registry) *ASTChunker {
	return &ASTChunker{registry: r}
}

// Chunk parses filename's source and returns its chunks and usages. If
// no tree-sitter grammar is registered for the file, it returns
// (nil, nil, nil) so the caller can fall back to a regex chunker or the
// synthetic whole-file chunk.
func (c *ASTChunker) Chunk(filename string, src []byte) ([]model.Chunk, []model.Usage, error) {
	spec, lang := c.registry.Lookup(filename)
	if spec == nil {
		return nil, nil, nil
	}

	tree, err := parseTree(spec.Language, src)
	if err != nil {
		return nil, nil, &model.ParseError{File: filename, Err: err}
	}
	defer tree.Close()

	captures, err := runQuery(spec.Language, spec.Query, tree.RootNode(), src)
	if err != nil {
		return nil, nil, &model.ParseError{File: filename, Err: fmt.Errorf("chunk query: %w", err)}
	}
	captures = dedupCaptures(captures)

	deps := ExtractDependencies(lang, src)

	var chunks []model.Chunk
	for _, cap := range captures {
		nodeType := cap.kind
		// A decorated definition takes its kind from the wrapped
		// function or class, not from the decorator wrapper.
		if nodeType == "decorated_definition" {
			if def := cap.node.ChildByFieldName("definition"); def != nil {
				nodeType = def.Type()
			}
		}
		kind := mapKind(lang, nodeType)
		name := cap.name
		if name == "" {
			name = fmt.Sprintf("%s:%d-%d", filename, cap.startLine, cap.endLine)
		}
		if kind == model.KindVariable && name == strings.ToUpper(name) && strings.ToUpper(name) != strings.ToLower(name) {
			kind = model.KindConstant
		}
		content := string(src[cap.startByte:cap.endByte])
		complexity := countComplexity(cap.node, src, complexitySpecFor(lang))
		signature := extractSignature(content, cap.name, callableKinds[kind])

		if len(content) > maxChunkBytes {
			chunks = append(chunks, splitOversized(filename, lang, kind, name, content, cap.startLine, deps, complexity)...)
			continue
		}

		chunks = append(chunks, model.Chunk{
			ID:           model.ChunkID(filename, name, cap.startLine),
			Filename:     filename,
			Language:     lang,
			SymbolName:   name,
			SymbolKind:   kind,
			StartLine:    cap.startLine,
			EndLine:      cap.endLine,
			Content:      content,
			Signature:    signature,
			Complexity:   complexity,
			Dependencies: deps,
		})
	}

	if len(chunks) == 0 {
		chunks = []model.Chunk{SyntheticChunk(filename, lang, src, deps)}
	}

	usages, err := extractUsages(spec, lang, tree.RootNode(), src, chunks)
	if err != nil {
		return nil, nil, &model.ParseError{File: filename, Err: fmt.Errorf("usage query: %w", err)}
	}

	return chunks, usages, nil
}

func parseTree(lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	return parser.ParseCtx(context.Background(), nil, src)
}

func runQuery(lang *sitter.Language, queryStr string, root *sitter.Node, src []byte) ([]capture, error) {
	if strings.TrimSpace(queryStr) == "" {
		return nil, nil
	}
	q, err := sitter.NewQuery([]byte(queryStr), lang)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var captures []capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var chunkNode *sitter.Node
		var nameStr string
		var tagName string
		var tagNode *sitter.Node
		for _, cap := range m.Captures {
			capName := q.CaptureNameForId(cap.Index)
			switch capName {
			case "chunk":
				chunkNode = cap.Node
			case "name":
				nameStr = cap.Node.Content(src)
			default:
				tagName = capName
				tagNode = cap.Node
			}
		}
		// Usage queries tag the identifier itself (@call, @decorator, ...)
		// rather than a separate @chunk/@name pair; fall back to the
		// tagged node for both position and identifier text.
		if chunkNode == nil {
			chunkNode = tagNode
		}
		if nameStr == "" && tagNode != nil {
			nameStr = tagNode.Content(src)
		}
		if chunkNode == nil {
			continue
		}
		captures = append(captures, capture{
			name:      nameStr,
			kind:      chunkNode.Type(),
			tag:       tagName,
			node:      chunkNode,
			startLine: int(chunkNode.StartPoint().Row) + 1,
			endLine:   int(chunkNode.EndPoint().Row) + 1,
			startByte: chunkNode.StartByte(),
			endByte:   chunkNode.EndByte(),
		})
	}
	return captures, nil
}

// dedupCaptures removes captures fully contained within a larger one so
// e.g. a decorated function isn't double-counted as both the bare
// function_definition and the decorated_definition wrapper.
func dedupCaptures(caps []capture) []capture {
	if len(caps) <= 1 {
		return caps
	}
	sort.Slice(caps, func(i, j int) bool {
		if caps[i].startByte != caps[j].startByte {
			return caps[i].startByte < caps[j].startByte
		}
		return (caps[i].endByte - caps[i].startByte) > (caps[j].endByte - caps[j].startByte)
	})

	var result []capture
	var lastEnd uint32
	for _, c := range caps {
		if c.startByte >= lastEnd || lastEnd == 0 {
			result = append(result, c)
			if c.endByte > lastEnd {
				lastEnd = c.endByte
			}
		}
	}
	return result
}

// splitOversized splits a chunk exceeding maxChunkBytes into overlapping
// line windows so no single embedded unit is unreasonably large.
func splitOversized(filename, lang, kind, name, content string, baseStartLine int, deps []string, complexity int) []model.Chunk {
	lines := strings.Split(content, "\n")
	const windowSize = 40
	const overlap = 10

	var chunks []model.Chunk
	for i := 0; i < len(lines); {
		end := i + windowSize
		if end > len(lines) {
			end = len(lines)
		}
		piece := strings.Join(lines[i:end], "\n")
		startLine := baseStartLine + i
		chunks = append(chunks, model.Chunk{
			ID:           model.ChunkID(filename, name, startLine),
			Filename:     filename,
			Language:     lang,
			SymbolName:   name,
			SymbolKind:   kind,
			StartLine:    startLine,
			EndLine:      baseStartLine + end - 1,
			Content:      piece,
			Complexity:   complexity,
			Dependencies: deps,
		})
		if end >= len(lines) {
			break
		}
		i += windowSize - overlap
	}
	return chunks
}

// SyntheticChunk builds the whole-file fallback chunk used when a file
// has no dedicated chunker, or its chunker finds nothing to extract.
func SyntheticChunk(filename, lang string, src []byte, deps []string) model.Chunk {
	lineCount := strings.Count(string(src), "\n") + 1
	name := fmt.Sprintf("%s:%d-%d", filename, 1, lineCount)
	return model.Chunk{
		ID:           model.ChunkID(filename, name, 1),
		Filename:     filename,
		Language:     lang,
		SymbolName:   name,
		SymbolKind:   model.KindChunk,
		StartLine:    1,
		EndLine:      lineCount,
		Content:      string(src),
		Complexity:   1,
		Dependencies: deps,
	}
}

func complexitySpecFor(lang string) complexitySpec {
	switch lang {
	case "python":
		return pythonComplexity
	case "javascript", "typescript":
		return jsComplexity
	case "go":
		return goComplexity
	case "rust":
		return rustComplexity
	case "java":
		return javaComplexity
	case "cpp":
		return cppComplexity
	default:
		return complexitySpec{}
	}
}

// mapKind translates a grammar-specific node type into the spec's
// canonical symbol_kind vocabulary.
func mapKind(lang, nodeType string) string {
	switch nodeType {
	case "function_definition", "function_declaration", "fn_item", "arrow_function":
		return model.KindFunction
	case "method_definition", "method_declaration":
		return model.KindMethod
	case "class_definition", "class_declaration", "class_specifier",
		"struct_item", "struct_specifier", "enum_item", "trait_item", "impl_item",
		"interface_declaration", "type_alias_declaration", "type_declaration",
		"decorated_definition":
		return model.KindClass
	case "lexical_declaration", "expression_statement", "var_declaration",
		"const_declaration", "short_var_declaration", "assignment":
		return model.KindVariable
	default:
		return model.KindChunk
	}
}

type capture struct {
	name      string
	kind      string
	tag       string
	node      *sitter.Node
	startLine int
	endLine   int
	startByte uint32
	endByte   uint32
}
