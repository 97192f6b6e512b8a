package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codekg/internal/model"
)

func TestMarkdownChunkerExtractsMermaidNodes(t *testing.T) {
	src := "# Architecture\n\n" +
		"```mermaid\n" +
		"graph TD\n" +
		"  Client(Client App) --> Gateway[API Gateway]\n" +
		"  Gateway --> Auth(Auth Service)\n" +
		"```\n"

	chunks, usages, err := MarkdownChunker{}.Chunk("docs/architecture.md", []byte(src))
	require.NoError(t, err)
	assert.Nil(t, usages)

	var names []string
	for _, c := range chunks {
		names = append(names, c.SymbolName)
		assert.Equal(t, model.KindDiagramNode, c.SymbolKind)
	}
	assert.Contains(t, names, "Client")
	assert.Contains(t, names, "Gateway")
	assert.Contains(t, names, "Auth")
}

func TestMarkdownChunkerDedupesRepeatedNodePerFence(t *testing.T) {
	src := "```mermaid\n" +
		"graph TD\n" +
		"  Client(App) --> Gateway[API]\n" +
		"  Client(App) --> Other[Thing]\n" +
		"```\n"

	chunks, _, err := MarkdownChunker{}.Chunk("docs/dup.md", []byte(src))
	require.NoError(t, err)

	count := 0
	for _, c := range chunks {
		if c.SymbolName == "Client" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMarkdownChunkerProseOnlyFallsBackToWholeFileChunk(t *testing.T) {
	src := "# Just prose\n\nNo diagrams here.\n"
	chunks, _, err := MarkdownChunker{}.Chunk("docs/readme.md", []byte(src))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, model.KindChunk, chunks[0].SymbolKind)
}
