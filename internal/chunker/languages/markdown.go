package languages

import (
	"fmt"
	"regexp"
	"strings"

	"codekg/internal/model"
)

var (
	mermaidFence = regexp.MustCompile("(?s)```mermaid\\s*\\n(.*?)```")
	mermaidNode  = regexp.MustCompile(`\b([A-Za-z_]\w*)\s*[\[\(\{][^\]\)\}]*[\]\)\}]`)
)

// MarkdownChunker pulls Mermaid diagram blocks out of fenced code
// spans and turns each labeled node inside them into a chunk of kind
// diagram_node. Prose outside fenced mermaid blocks is not chunked,
// except that a file yielding no diagram nodes becomes one whole-file
// chunk.
type MarkdownChunker struct{}

func (MarkdownChunker) Extensions() []string { return []string{"md"} }

func (MarkdownChunker) Chunk(filename string, src []byte) ([]model.Chunk, []model.Usage, error) {
	content := string(src)
	var chunks []model.Chunk

	for _, fenceLoc := range mermaidFence.FindAllStringSubmatchIndex(content, -1) {
		bodyStart, bodyEnd := fenceLoc[2], fenceLoc[3]
		body := content[bodyStart:bodyEnd]
		bodyLineBase := strings.Count(content[:bodyStart], "\n") + 1

		seen := make(map[string]bool)
		for _, m := range mermaidNode.FindAllStringSubmatchIndex(body, -1) {
			nameStart, nameEnd := m[2], m[3]
			name := body[nameStart:nameEnd]
			if seen[name] {
				continue
			}
			seen[name] = true

			line := bodyLineBase + strings.Count(body[:m[0]], "\n")
			lineEnd := strings.IndexByte(body[m[0]:], '\n')
			var stmt string
			if lineEnd == -1 {
				stmt = body[m[0]:]
			} else {
				stmt = body[m[0] : m[0]+lineEnd]
			}

			chunks = append(chunks, model.Chunk{
				ID:         model.ChunkID(filename, name, line),
				Filename:   filename,
				Language:   model.LangMarkdown,
				SymbolName: name,
				SymbolKind: model.KindDiagramNode,
				StartLine:  line,
				EndLine:    line,
				Content:    strings.TrimSpace(stmt),
				Complexity: 1,
			})
		}
	}

	if len(chunks) == 0 && strings.TrimSpace(content) != "" {
		lineCount := strings.Count(content, "\n") + 1
		name := fmt.Sprintf("%s:1-%d", filename, lineCount)
		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(filename, name, 1),
			Filename:   filename,
			Language:   model.LangMarkdown,
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
