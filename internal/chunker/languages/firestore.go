// Package languages also holds the non-tree-sitter chunkers for
// languages without an available grammar in this build: Firestore
// security rules, SQL, Dart, and Markdown/Mermaid diagrams. Each finds
// its structural boundaries with a regex anchor and a brace/line scan
// rather than an AST.
package languages

import (
	"fmt"
	"regexp"
	"strings"

	"codekg/internal/model"
)

var matchBlockStart = regexp.MustCompile(`match\s+(\S+)\s*\{`)

// FirestoreChunker extracts each `match /path/ { ... }` block as a
// chunk of kind match_path, grounded on the brace-counting scan used by
// the original Firestore rules parser.
type FirestoreChunker struct{}

func (FirestoreChunker) Extensions() []string { return []string{"rules"} }

func (FirestoreChunker) Chunk(filename string, src []byte) ([]model.Chunk, []model.Usage, error) {
	content := string(src)
	var chunks []model.Chunk

	for _, loc := range matchBlockStart.FindAllStringSubmatchIndex(content, -1) {
		startIndex := loc[0]
		pathStart, pathEnd := loc[2], loc[3]
		path := strings.TrimSpace(content[pathStart:pathEnd])

		endIndex := findMatchingBrace(content, loc[1]-1)
		if endIndex == -1 {
			continue
		}

		block := content[startIndex:endIndex]
		startLine := strings.Count(content[:startIndex], "\n") + 1
		endLine := startLine + strings.Count(block, "\n")

		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(filename, path, startLine),
			Filename:   filename,
			Language:   model.LangFirestore,
			SymbolName: path,
			SymbolKind: model.KindMatchPath,
			StartLine:  startLine,
			EndLine:    endLine,
			Content:    block,
			Signature:  fmt.Sprintf("match %s", path),
			Complexity: 1,
		})
	}

	if len(chunks) == 0 && strings.TrimSpace(content) != "" {
		lineCount := strings.Count(content, "\n") + 1
		name := fmt.Sprintf("%s:1-%d", filename, lineCount)
		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(filename, name, 1),
			Filename:   filename,
			Language:   model.LangFirestore,
			SymbolName: name,
			SymbolKind: model.KindChunk,
			StartLine:  1,
			EndLine:    lineCount,
			Content:    content,
			Complexity: 1,
		})
	}

	return chunks, nil, nil
}

// findMatchingBrace returns the index just past the closing brace that
// matches the first "{" at or after start, or -1 if unbalanced.
func findMatchingBrace(content string, start int) int {
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
