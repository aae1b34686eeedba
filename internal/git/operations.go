package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status classifies a path in a diff against the base revision.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
	StatusRenamed  Status = "renamed"
)

// ChangedFile is one entry from the name-status diff against the base.
// OldPath is set only for renames.
type ChangedFile struct {
	Path    string
	OldPath string
	Status  Status
}

// Operations defines the interface for git operations.
// This allows mocking git commands in tests.
type Operations interface {
	// GetCurrentBranch returns the current branch name.
	// For detached HEAD, returns "detached-{short-hash}".
	// Returns "unknown" if all git commands fail.
	GetCurrentBranch(repoPath string) string

	// FindAncestorBranch finds the ancestor branch (main or master).
	// Returns empty string if no ancestor found.
	FindAncestorBranch(repoPath, currentBranch string) string

	// GetWorktreeRoot returns the git worktree root path.
	// Falls back to repoPath if not a git repository.
	GetWorktreeRoot(repoPath string) string

	// MergeBase resolves the merge base between HEAD and ref,
	// returning its full commit hash.
	MergeBase(repoPath, ref string) (string, error)

	// ChangedFiles lists files that differ between commit and the
	// worktree, with rename detection.
	ChangedFiles(repoPath, commit string) ([]ChangedFile, error)

	// ShowFile returns the content of path as of commit.
	ShowFile(repoPath, commit, path string) ([]byte, error)
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) GetCurrentBranch(repoPath string) string {
	cmd := exec.Command("git", "branch", "--show-current")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil || len(strings.TrimSpace(string(output))) == 0 {
		// Might be detached HEAD
		cmd = exec.Command("git", "rev-parse", "--short", "HEAD")
		cmd.Dir = repoPath
		output, err = cmd.Output()
		if err != nil {
			return "unknown"
		}
		return "detached-" + strings.TrimSpace(string(output))
	}
	return strings.TrimSpace(string(output))
}

func (g *gitOps) FindAncestorBranch(repoPath, currentBranch string) string {
	// Try merge-base with main
	cmd := exec.Command("git", "merge-base", currentBranch, "main")
	cmd.Dir = repoPath
	if output, err := cmd.Output(); err == nil && len(output) > 0 {
		return "main"
	}

	// Try merge-base with master
	cmd = exec.Command("git", "merge-base", currentBranch, "master")
	cmd.Dir = repoPath
	if output, err := cmd.Output(); err == nil && len(output) > 0 {
		return "master"
	}

	return ""
}

func (g *gitOps) GetWorktreeRoot(repoPath string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return repoPath
	}
	return strings.TrimSpace(string(output))
}

func (g *gitOps) MergeBase(repoPath, ref string) (string, error) {
	cmd := exec.Command("git", "merge-base", "HEAD", ref)
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolving merge base with %q: %w", ref, err)
	}
	return strings.TrimSpace(string(output)), nil
}

func (g *gitOps) ChangedFiles(repoPath, commit string) ([]ChangedFile, error) {
	cmd := exec.Command("git", "diff", "--name-status", "-M", commit)
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("diffing against %q: %w", commit, err)
	}

	var files []ChangedFile
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		file, ok := parseNameStatus(line)
		if !ok {
			continue
		}
		files = append(files, file)
	}
	return files, nil
}

func (g *gitOps) ShowFile(repoPath, commit, path string) ([]byte, error) {
	cmd := exec.Command("git", "show", commit+":"+path)
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("reading %s at %s: %w", path, commit, err)
	}
	return output, nil
}

// parseNameStatus parses one tab-separated name-status line, e.g.
// "M\tsrc/app.ts" or "R087\told.ts\tnew.ts".
func parseNameStatus(line string) (ChangedFile, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 || parts[0] == "" {
		return ChangedFile{}, false
	}

	switch parts[0][0] {
	case 'A':
		return ChangedFile{Path: parts[1], Status: StatusAdded}, true
	case 'M':
		return ChangedFile{Path: parts[1], Status: StatusModified}, true
	case 'D':
		return ChangedFile{Path: parts[1], Status: StatusDeleted}, true
	case 'R', 'C':
		if len(parts) < 3 {
			return ChangedFile{}, false
		}
		return ChangedFile{Path: parts[2], OldPath: parts[1], Status: StatusRenamed}, true
	default:
		// Type changes, unmerged entries: treat as modified so the
		// file is still re-examined.
		return ChangedFile{Path: parts[1], Status: StatusModified}, true
	}
}
