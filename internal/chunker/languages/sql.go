package languages

import (
	"fmt"
	"regexp"
	"strings"

	"codekg/internal/model"
)

var sqlStatementStart = regexp.MustCompile(`(?im)^\s*(CREATE\s+(?:TABLE|VIEW|INDEX|FUNCTION|PROCEDURE)|SELECT)\b[^;]*`)
var sqlObjectName = regexp.MustCompile(`(?i)(?:TABLE|VIEW|INDEX|FUNCTION|PROCEDURE)\s+(?:IF\s+NOT\s+EXISTS\s+)?([\w."\x60]+)`)

// SQLChunker treats each CREATE/SELECT statement, terminated by ";", as
// one chunk. There is no available tree-sitter SQL grammar in this
// build, so statement boundaries are found by regex anchor plus
// semicolon scan, in the same spirit as the Firestore brace scan.
type SQLChunker struct{}

func (SQLChunker) Extensions() []string { return []string{"sql"} }

func (SQLChunker) Chunk(filename string, src []byte) ([]model.Chunk, []model.Usage, error) {
	content := string(src)
	var chunks []model.Chunk

	for _, loc := range sqlStatementStart.FindAllStringIndex(content, -1) {
		start := loc[0]
		end := strings.IndexByte(content[start:], ';')
		if end == -1 {
			end = len(content) - start
		} else {
			end++
		}
		stmt := content[start : start+end]
		startLine := strings.Count(content[:start], "\n") + 1
		endLine := startLine + strings.Count(stmt, "\n")

		name := sqlName(stmt)
		if name == "" {
			name = fmt.Sprintf("%s:%d-%d", filename, startLine, endLine)
		}

		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(filename, name, startLine),
			Filename:   filename,
			Language:   model.LangSQL,
			SymbolName: name,
			SymbolKind: model.KindChunk,
			StartLine:  startLine,
			EndLine:    endLine,
			Content:    stmt,
			Complexity: 1,
		})
	}

	if len(chunks) == 0 && strings.TrimSpace(content) != "" {
		lineCount := strings.Count(content, "\n") + 1
		name := fmt.Sprintf("%s:1-%d", filename, lineCount)
		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(filename, name, 1),
			Filename:   filename,
			Language:   model.LangSQL,
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

func sqlName(stmt string) string {
	m := sqlObjectName.FindStringSubmatch(stmt)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], "`\"")
}
