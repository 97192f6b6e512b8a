package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codekg/internal/model"
)

func TestDartChunkerExtractsClassAndInstantiationUsage(t *testing.T) {
	src := `class AuthGate extends StatelessWidget {
  Widget build(BuildContext context) {
    return LoginScreen();
  }
}
`
	chunks, usages, err := DartChunker{}.Chunk("lib/auth_gate.dart", []byte(src))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "AuthGate", chunks[0].SymbolName)
	assert.Equal(t, model.KindClass, chunks[0].SymbolKind)

	require.Len(t, usages, 1)
	assert.Equal(t, "LoginScreen", usages[0].ReferencedName)
	assert.Equal(t, model.UsageInstantiation, usages[0].Kind)
	assert.Equal(t, chunks[0].ID, usages[0].ContainingChunkID)
}

func TestDartChunkerTopLevelFunctionAndVariable(t *testing.T) {
	src := `const defaultTimeout = 30;

void configure() {
  print("configured");
}
`
	chunks, _, err := DartChunker{}.Chunk("lib/config.dart", []byte(src))
	require.NoError(t, err)

	var names []string
	for _, c := range chunks {
		names = append(names, c.SymbolName)
	}
	assert.Contains(t, names, "defaultTimeout")
	assert.Contains(t, names, "configure")
}

func TestDartChunkerEmptyFileProducesNoChunks(t *testing.T) {
	chunks, usages, err := DartChunker{}.Chunk("lib/empty.dart", []byte("   \n  "))
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Empty(t, usages)
}
