package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codekg/internal/model"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, minLimit, clampLimit(0))
	assert.Equal(t, minLimit, clampLimit(-5))
	assert.Equal(t, 10, clampLimit(10))
	assert.Equal(t, maxLimit, clampLimit(500))
}

func TestExtractKeywordsCapsAtThree(t *testing.T) {
	kws := extractKeywords("AUTHENTICATE verify_token SESSION_TOKEN refresh")
	assert.LessOrEqual(t, len(kws), maxKeywords)
}

func TestExtractKeywordsMatchesUppercaseAndLongWords(t *testing.T) {
	kws := extractKeywords("call the API once from the handler")
	assert.Contains(t, kws, "API")
	assert.Contains(t, kws, "handler")
}

func TestInferLanguageFromQuery(t *testing.T) {
	assert.Equal(t, model.LangPython, inferLanguage("find the python auth decorator"))
	assert.Equal(t, "", inferLanguage("find the auth decorator"))
}

func TestSortChunksByPriorityPutsSourceFirst(t *testing.T) {
	chunks := []model.Chunk{
		{Filename: "docs/auth.md", SymbolName: "auth"},
		{Filename: "tests/test_auth.py", SymbolName: "auth"},
		{Filename: "src/auth.py", SymbolName: "auth"},
	}
	sortChunksByPriority(chunks)
	assert.Equal(t, "src/auth.py", chunks[0].Filename)
	assert.Equal(t, "tests/test_auth.py", chunks[1].Filename)
	assert.Equal(t, "docs/auth.md", chunks[2].Filename)
}
