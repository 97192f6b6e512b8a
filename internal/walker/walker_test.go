package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("content"), 0o644))
}

func TestWalkSkipsDefaultIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.py")
	writeFile(t, root, "node_modules/pkg/index.js")
	writeFile(t, root, ".git/HEAD")
	writeFile(t, root, "venv/lib/foo.py")

	files, errs := Walk(root, map[string]bool{"py": true, "js": true}, Scope{})
	var got []string
	for f := range files {
		got = append(got, f.RelPath)
	}
	require.NoError(t, <-errs)

	sort.Strings(got)
	assert.Equal(t, []string{"src/main.py"}, got)
}

func TestWalkExcludeWinsOverInclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/auth.py")
	writeFile(t, root, "tests/test_auth.py")

	files, errs := Walk(root, map[string]bool{"py": true}, Scope{
		Include: []string{"**/*.py"},
		Exclude: []string{"tests/**"},
	})
	var got []string
	for f := range files {
		got = append(got, f.RelPath)
	}
	require.NoError(t, <-errs)

	assert.Equal(t, []string{"src/auth.py"}, got)
}

func TestScopeAllowsEmptyIncludeMatchesEverything(t *testing.T) {
	s := Scope{}
	assert.True(t, s.Allows("any/path.go"))
}

func TestScopeAllowsUnanchoredExclude(t *testing.T) {
	s := Scope{Exclude: []string{"tests/**"}}
	assert.False(t, s.Allows("tests/test_auth.py"))
	assert.True(t, s.Allows("src/auth.py"))
}
