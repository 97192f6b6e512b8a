package languages

import (
	"fmt"
	"regexp"
	"strings"

	"codekg/internal/chunker"
	"codekg/internal/model"
)

var (
	dartClassLike = regexp.MustCompile(`(?m)^\s*(?:abstract\s+)?(class|mixin|enum)\s+([A-Za-z_]\w*)`)
	dartTopFunc   = regexp.MustCompile(`(?m)^\s*(?:[\w<>,\s]+?)\s+([a-z_]\w*)\s*\([^;{]*\)\s*(?:async\s*)?\{`)
	dartTopVar    = regexp.MustCompile(`(?m)^\s*(?:final|const|var)\s+(?:[\w<>,\s]+\s+)?([A-Za-z_]\w*)\s*=`)
	dartInstance  = regexp.MustCompile(`\b([A-Z]\w*)\s*\(`)
)

// DartChunker extracts class/mixin/enum bodies via brace matching and
// top-level function/variable declarations via regex, since no
// tree-sitter Dart grammar is available in this build. Widget
// instantiations (a capitalized identifier immediately followed by a
// call) become usages, never chunks, per spec's Dart rule.
type DartChunker struct{}

func (DartChunker) Extensions() []string { return []string{"dart"} }

func (DartChunker) Chunk(filename string, src []byte) ([]model.Chunk, []model.Usage, error) {
	content := string(src)
	deps := chunker.ExtractDependencies("dart", src)
	var chunks []model.Chunk

	for _, loc := range dartClassLike.FindAllStringSubmatchIndex(content, -1) {
		nameStart, nameEnd := loc[4], loc[5]
		name := content[nameStart:nameEnd]

		braceIdx := strings.IndexByte(content[loc[1]:], '{')
		if braceIdx == -1 {
			continue
		}
		braceIdx += loc[1]
		endIndex := findMatchingBrace(content, braceIdx)
		if endIndex == -1 {
			continue
		}

		block := content[loc[0]:endIndex]
		startLine := strings.Count(content[:loc[0]], "\n") + 1
		endLine := startLine + strings.Count(block, "\n")

		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(filename, name, startLine),
			Filename:   filename,
			Language:   model.LangDart,
			SymbolName: name,
			SymbolKind: model.KindClass,
			StartLine:  startLine,
			EndLine:    endLine,
			Content:    block,
			Complexity: 1,
		})
	}

	claimed := make([]bool, len(content)+1)
	for _, c := range chunks {
		start := lineOffset(content, c.StartLine)
		end := lineOffset(content, c.EndLine+1)
		for i := start; i < end && i < len(claimed); i++ {
			claimed[i] = true
		}
	}

	for _, loc := range dartTopFunc.FindAllStringSubmatchIndex(content, -1) {
		if loc[0] < len(claimed) && claimed[loc[0]] {
			continue
		}
		nameStart, nameEnd := loc[2], loc[3]
		name := content[nameStart:nameEnd]

		braceIdx := strings.IndexByte(content[loc[1]-1:], '{')
		if braceIdx == -1 {
			continue
		}
		braceIdx += loc[1] - 1
		endIndex := findMatchingBrace(content, braceIdx)
		if endIndex == -1 {
			continue
		}

		block := content[loc[0]:endIndex]
		startLine := strings.Count(content[:loc[0]], "\n") + 1
		endLine := startLine + strings.Count(block, "\n")

		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(filename, name, startLine),
			Filename:   filename,
			Language:   model.LangDart,
			SymbolName: name,
			SymbolKind: model.KindFunction,
			StartLine:  startLine,
			EndLine:    endLine,
			Content:    block,
			Signature:  fmt.Sprintf("%s(...)", name),
			Complexity: 1,
		})
	}

	for _, loc := range dartTopVar.FindAllStringSubmatchIndex(content, -1) {
		if loc[0] < len(claimed) && claimed[loc[0]] {
			continue
		}
		nameStart, nameEnd := loc[2], loc[3]
		name := content[nameStart:nameEnd]
		lineEnd := strings.IndexByte(content[loc[0]:], '\n')
		if lineEnd == -1 {
			lineEnd = len(content) - loc[0]
		}
		line := content[loc[0] : loc[0]+lineEnd]
		startLine := strings.Count(content[:loc[0]], "\n") + 1

		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(filename, name, startLine),
			Filename:   filename,
			Language:   model.LangDart,
			SymbolName: name,
			SymbolKind: model.KindVariable,
			StartLine:  startLine,
			EndLine:    startLine,
			Content:    line,
			Complexity: 1,
		})
	}

	if len(chunks) == 0 && strings.TrimSpace(content) != "" {
		lineCount := strings.Count(content, "\n") + 1
		name := fmt.Sprintf("%s:1-%d", filename, lineCount)
		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(filename, name, 1),
			Filename:   filename,
			Language:   model.LangDart,
			SymbolName: name,
			SymbolKind: model.KindChunk,
			StartLine:  1,
			EndLine:    lineCount,
			Content:    content,
			Complexity: 1,
		})
	}

	for i := range chunks {
		chunks[i].Dependencies = deps
	}

	usages := extractDartUsages(chunks)
	return chunks, usages, nil
}

func extractDartUsages(chunks []model.Chunk) []model.Usage {
	var usages []model.Usage
	for _, c := range chunks {
		for _, m := range dartInstance.FindAllStringSubmatch(c.Content, -1) {
			usages = append(usages, model.Usage{
				ContainingChunkID: c.ID,
				ReferencedName:    m[1],
				Kind:              model.UsageInstantiation,
			})
		}
	}
	return usages
}

func lineOffset(content string, line int) int {
	if line <= 1 {
		return 0
	}
	count := 1
	for i, c := range content {
		if c == '\n' {
			count++
			if count == line {
				return i + 1
			}
		}
	}
	return len(content)
}
