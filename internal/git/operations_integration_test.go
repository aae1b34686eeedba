package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for the real Operations implementation.
// These tests use actual git commands and run sequentially (NO t.Parallel()).

func TestGitOpsIntegration(t *testing.T) {
	// NO t.Parallel() - these tests run sequentially to avoid resource exhaustion

	gitOps := NewOperations()

	t.Run("GetCurrentBranch on main", func(t *testing.T) {
		dir := createTestGitRepo(t)
		branch := gitOps.GetCurrentBranch(dir)
		assert.Equal(t, "main", branch)
	})

	t.Run("GetCurrentBranch detached HEAD", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "HEAD~0")
		branch := gitOps.GetCurrentBranch(dir)
		assert.Contains(t, branch, "detached-")
	})

	t.Run("GetCurrentBranch non-git directory", func(t *testing.T) {
		dir := t.TempDir()
		branch := gitOps.GetCurrentBranch(dir)
		assert.Equal(t, "unknown", branch)
	})

	t.Run("FindAncestorBranch finds main", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "-b", "feature/test")
		ancestor := gitOps.FindAncestorBranch(dir, "feature/test")
		assert.Equal(t, "main", ancestor)
	})

	t.Run("FindAncestorBranch no common ancestor", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "--orphan", "orphan-branch")
		ancestor := gitOps.FindAncestorBranch(dir, "orphan-branch")
		assert.Equal(t, "", ancestor)
	})

	t.Run("GetWorktreeRoot", func(t *testing.T) {
		dir := createTestGitRepo(t)
		sub := filepath.Join(dir, "src")
		require.NoError(t, os.MkdirAll(sub, 0755))
		root := gitOps.GetWorktreeRoot(sub)
		assert.Equal(t, resolveSymlinks(t, dir), resolveSymlinks(t, root))
	})

	t.Run("MergeBase resolves ancestor commit", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "-b", "feature/diverge")
		writeAndCommit(t, dir, "feature.py", "def f():\n    pass\n")

		hash, err := gitOps.MergeBase(dir, "main")
		require.NoError(t, err)
		assert.Len(t, hash, 40)
	})

	t.Run("MergeBase unknown ref", func(t *testing.T) {
		dir := createTestGitRepo(t)
		_, err := gitOps.MergeBase(dir, "no-such-branch")
		assert.Error(t, err)
	})

	t.Run("ChangedFiles reports add modify delete", func(t *testing.T) {
		dir := createTestGitRepo(t)
		writeAndCommit(t, dir, "app.py", "def run():\n    pass\n")
		base, err := gitOps.MergeBase(dir, "main")
		require.NoError(t, err)

		// One modification, one addition, one deletion in the worktree.
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("def run():\n    return 1\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "util.py"), []byte("X = 1\n"), 0644))
		runGitCmd(t, dir, "add", "util.py")
		require.NoError(t, os.Remove(filepath.Join(dir, "README.md")))

		files, err := gitOps.ChangedFiles(dir, base)
		require.NoError(t, err)

		byPath := make(map[string]Status)
		for _, f := range files {
			byPath[f.Path] = f.Status
		}
		assert.Equal(t, StatusModified, byPath["app.py"])
		assert.Equal(t, StatusAdded, byPath["util.py"])
		assert.Equal(t, StatusDeleted, byPath["README.md"])
	})

	t.Run("ChangedFiles detects renames", func(t *testing.T) {
		dir := createTestGitRepo(t)
		writeAndCommit(t, dir, "old_name.py", "def stable():\n    return 42\n")
		base, err := gitOps.MergeBase(dir, "main")
		require.NoError(t, err)

		runGitCmd(t, dir, "mv", "old_name.py", "new_name.py")

		files, err := gitOps.ChangedFiles(dir, base)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, StatusRenamed, files[0].Status)
		assert.Equal(t, "new_name.py", files[0].Path)
		assert.Equal(t, "old_name.py", files[0].OldPath)
	})

	t.Run("ShowFile returns committed content", func(t *testing.T) {
		dir := createTestGitRepo(t)
		writeAndCommit(t, dir, "app.py", "def run():\n    pass\n")
		base, err := gitOps.MergeBase(dir, "main")
		require.NoError(t, err)

		// Mutate the worktree: ShowFile must still see the base version.
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("changed"), 0644))

		content, err := gitOps.ShowFile(dir, base, "app.py")
		require.NoError(t, err)
		assert.Equal(t, "def run():\n    pass\n", string(content))
	})

	t.Run("ShowFile missing path", func(t *testing.T) {
		dir := createTestGitRepo(t)
		base, err := gitOps.MergeBase(dir, "main")
		require.NoError(t, err)

		_, err = gitOps.ShowFile(dir, base, "nope.py")
		assert.Error(t, err)
	})
}

func TestParseNameStatus(t *testing.T) {
	t.Parallel()

	f, ok := parseNameStatus("M\tsrc/app.ts")
	require.True(t, ok)
	assert.Equal(t, ChangedFile{Path: "src/app.ts", Status: StatusModified}, f)

	f, ok = parseNameStatus("R087\told.ts\tnew.ts")
	require.True(t, ok)
	assert.Equal(t, ChangedFile{Path: "new.ts", OldPath: "old.ts", Status: StatusRenamed}, f)

	_, ok = parseNameStatus("garbage")
	assert.False(t, ok)
}

func createTestGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// Initialize repo
	cmd := exec.Command("git", "init", "-b", "main")
	cmd.Dir = dir
	require.NoError(t, cmd.Run(), "git init failed")

	// Configure git identity
	runGitCmd(t, dir, "config", "user.email", "test@example.com")
	runGitCmd(t, dir, "config", "user.name", "Test User")

	// Create initial commit
	testFile := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# Test\n"), 0644))
	runGitCmd(t, dir, "add", "README.md")
	runGitCmd(t, dir, "commit", "-m", "Initial commit")

	return dir
}

func writeAndCommit(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	runGitCmd(t, dir, "add", name)
	runGitCmd(t, dir, "commit", "-m", "add "+name)
}

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}

func resolveSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}
