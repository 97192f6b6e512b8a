package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestJSResolverEscapingImportResolvesToEmpty(t *testing.T) {
	root := t.TempDir()
	sourceFile := filepath.Join(root, "src", "auth.js")
	writeFile(t, sourceFile, "")

	r := &JSResolver{}
	got := r.Resolve(sourceFile, "../../../../etc/passwd", root)

	assert.Equal(t, "", got)
}

func TestJSResolverRelativeImportResolves(t *testing.T) {
	root := t.TempDir()
	sourceFile := filepath.Join(root, "src", "auth.js")
	target := filepath.Join(root, "src", "utils.js")
	writeFile(t, sourceFile, "")
	writeFile(t, target, "")

	r := &JSResolver{}
	got := r.Resolve(sourceFile, "./utils", root)

	assert.Equal(t, target, got)
}

func TestJSResolverMissingRelativeImportResolvesToEmpty(t *testing.T) {
	root := t.TempDir()
	sourceFile := filepath.Join(root, "src", "auth.js")
	writeFile(t, sourceFile, "")

	r := &JSResolver{}
	got := r.Resolve(sourceFile, "./does-not-exist", root)

	assert.Equal(t, "", got)
}

func TestForLanguageReturnsNilForUnresolvedLanguages(t *testing.T) {
	assert.Nil(t, ForLanguage("go"))
	assert.Nil(t, ForLanguage("rust"))
	assert.NotNil(t, ForLanguage("python"))
	assert.NotNil(t, ForLanguage("javascript"))
	assert.NotNil(t, ForLanguage("dart"))
}

func TestGuardRejectsPathOutsideRoot(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "", guard(root, filepath.Join(root, "..", "elsewhere")))
	assert.Equal(t, "", guard(root, ""))
}
