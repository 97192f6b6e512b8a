package gitmeta

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initGitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	run("init", "-q", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("x = 1\n"), 0o644))
	run("add", "a.py")
	run("commit", "-q", "-m", "initial")

	return root
}

func TestIsGitRepoTrueForRealRepo(t *testing.T) {
	root := initGitRepo(t)
	f := New(root, 0)
	assert.True(t, f.IsGitRepo(context.Background()))
}

func TestIsGitRepoFalseForPlainDir(t *testing.T) {
	root := t.TempDir()
	f := New(root, 0)
	assert.False(t, f.IsGitRepo(context.Background()))
}

func TestFetchOneReturnsAuthorForTrackedFile(t *testing.T) {
	root := initGitRepo(t)
	f := New(root, 0)
	info := f.FetchOne(context.Background(), "a.py")
	assert.Equal(t, "test", info.Author)
	assert.NotEmpty(t, info.LastModified)
}

func TestFetchOneZeroValueForUntrackedFile(t *testing.T) {
	root := initGitRepo(t)
	f := New(root, 0)
	info := f.FetchOne(context.Background(), "missing.py")
	assert.Equal(t, Info{}, info)
}

func TestFetchBatchZeroValuesEverythingForNonGitRoot(t *testing.T) {
	root := t.TempDir()
	f := New(root, 0)
	results := f.FetchBatch(context.Background(), []string{"a.py", "b.py"})
	assert.Equal(t, Info{}, results["a.py"])
	assert.Equal(t, Info{}, results["b.py"])
}

func TestFetchBatchDedupesAndFetchesTrackedFiles(t *testing.T) {
	root := initGitRepo(t)
	f := New(root, 2)
	results := f.FetchBatch(context.Background(), []string{"a.py", "a.py"})
	require.Contains(t, results, "a.py")
	assert.Equal(t, "test", results["a.py"].Author)
}

func TestActiveBranchReturnsCurrentBranch(t *testing.T) {
	root := initGitRepo(t)
	f := New(root, 0)
	assert.Equal(t, "main", f.ActiveBranch(context.Background()))
}

func TestActiveBranchEmptyForNonGitRoot(t *testing.T) {
	root := t.TempDir()
	f := New(root, 0)
	assert.Equal(t, "", f.ActiveBranch(context.Background()))
}
