package git

import "fmt"

// MockGitOps is a mock implementation of Operations for testing.
type MockGitOps struct {
	CurrentBranch  string
	AncestorBranch string
	WorktreeRoot   string
	MergeBaseHash  string
	MergeBaseError error
	Changed        []ChangedFile
	ChangedError   error

	// Files maps "commit:path" to content for ShowFile.
	Files map[string][]byte
}

// NewMockGitOps creates a mock with sensible defaults.
func NewMockGitOps() *MockGitOps {
	return &MockGitOps{
		CurrentBranch:  "feature/work",
		AncestorBranch: "main",
		WorktreeRoot:   "/tmp/test-repo",
		MergeBaseHash:  "abc123def456",
		Files:          make(map[string][]byte),
	}
}

func (m *MockGitOps) GetCurrentBranch(repoPath string) string {
	return m.CurrentBranch
}

func (m *MockGitOps) FindAncestorBranch(repoPath, currentBranch string) string {
	return m.AncestorBranch
}

func (m *MockGitOps) GetWorktreeRoot(repoPath string) string {
	return m.WorktreeRoot
}

func (m *MockGitOps) MergeBase(repoPath, ref string) (string, error) {
	if m.MergeBaseError != nil {
		return "", m.MergeBaseError
	}
	return m.MergeBaseHash, nil
}

func (m *MockGitOps) ChangedFiles(repoPath, commit string) ([]ChangedFile, error) {
	if m.ChangedError != nil {
		return nil, m.ChangedError
	}
	return m.Changed, nil
}

func (m *MockGitOps) ShowFile(repoPath, commit, path string) ([]byte, error) {
	content, ok := m.Files[commit+":"+path]
	if !ok {
		return nil, fmt.Errorf("reading %s at %s: not found", path, commit)
	}
	return content, nil
}

// SetFile registers content for ShowFile lookups.
func (m *MockGitOps) SetFile(commit, path string, content []byte) {
	m.Files[commit+":"+path] = content
}

// String returns a human-readable representation of the mock state.
func (m *MockGitOps) String() string {
	return fmt.Sprintf("MockGitOps{branch=%s, ancestor=%s, base=%s, changed=%d}",
		m.CurrentBranch, m.AncestorBranch, m.MergeBaseHash, len(m.Changed))
}
