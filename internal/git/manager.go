package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmr-tortoise/coppice/internal/logger"
	"github.com/mmr-tortoise/coppice/internal/model"
)

// Manager provides Git worktree operations by invoking the git CLI.
//
// It is stateless — every method receives the repository path as a
// parameter. The struct exists as a receiver to support future
// extensions such as a configurable git binary path.
type Manager struct{}

// NewManager creates a new Manager.
func NewManager() *Manager {
	return &Manager{}
}

// IsRepo reports whether path is inside a Git working tree.
func (m *Manager) IsRepo(path string) bool {
	out, err := runGit(path, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// RepoRoot returns the top-level directory of the working tree
// containing path. Inside a linked worktree this is the worktree root,
// not the main checkout.
func (m *Manager) RepoRoot(path string) (string, error) {
	out, err := runGit(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// MainRepoRoot returns the root of the main checkout regardless of
// whether path is inside the main tree or a linked worktree. The first
// entry of `git worktree list --porcelain` is always the main working
// tree, so we take its path.
func (m *Manager) MainRepoRoot(path string) (string, error) {
	out, err := runGit(path, "worktree", "list", "--porcelain")
	if err != nil {
		return "", err
	}
	for _, line := range strings.SplitAfter(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "worktree "); ok {
			return strings.TrimSpace(rest), nil
		}
	}
	return "", model.NewCLIError(model.ExitGitError, "could not determine main repository root")
}

// ProjectName derives the project identifier from the main checkout's
// directory name.
func (m *Manager) ProjectName(path string) (string, error) {
	root, err := m.MainRepoRoot(path)
	if err != nil {
		return "", err
	}
	return filepath.Base(root), nil
}

// CurrentBranch returns the short name of the checked-out branch, or
// "HEAD" in a detached state.
func (m *Manager) CurrentBranch(path string) (string, error) {
	out, err := runGit(path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// BranchExists reports whether branch resolves to a ref in the
// repository at repoPath.
func (m *Manager) BranchExists(repoPath, branch string) bool {
	_, err := runGit(repoPath, "rev-parse", "--verify", "refs/heads/"+branch)
	return err == nil
}

// AddWorktree creates a worktree at worktreePath. A branch that does
// not exist yet is created from HEAD with -b; an existing branch is
// checked out into the new worktree instead, since -b would fail with
// "already exists".
func (m *Manager) AddWorktree(repoPath, branch, worktreePath string) error {
	if err := os.MkdirAll(filepath.Dir(worktreePath), 0o755); err != nil {
		return model.IOError("create", filepath.Dir(worktreePath), err)
	}

	var err error
	if m.BranchExists(repoPath, branch) {
		_, err = runGit(repoPath, "worktree", "add", worktreePath, branch)
	} else {
		_, err = runGit(repoPath, "worktree", "add", "-b", branch, worktreePath)
	}
	if err != nil {
		return err
	}

	logger.WithComponent("git").Info("added worktree", "branch", branch, "path", worktreePath)
	return nil
}

// RemoveWorktree removes the worktree at worktreePath. When git refuses
// (dirty tree, or administrative files already gone), the directory is
// removed directly and `git worktree prune` reconciles git's bookkeeping.
func (m *Manager) RemoveWorktree(repoPath, worktreePath string) error {
	_, err := runGit(repoPath, "worktree", "remove", "--force", worktreePath)
	if err == nil {
		return nil
	}

	logger.WithComponent("git").Warn("git worktree remove failed, removing directory directly",
		"path", worktreePath, "error", err)
	if rmErr := os.RemoveAll(worktreePath); rmErr != nil {
		return model.IOError("remove", worktreePath, rmErr)
	}
	_, err = runGit(repoPath, "worktree", "prune")
	return err
}

// DeleteBranch removes a local branch. Used after closing a worktree
// when the caller asked for the branch to go with it.
func (m *Manager) DeleteBranch(repoPath, branch string) error {
	_, err := runGit(repoPath, "branch", "-D", branch)
	return err
}

// LatestCommitDate returns the author date of the most recent commit in
// the working tree at path. Used to judge worktree activity during
// cleanup.
func (m *Manager) LatestCommitDate(path string) (time.Time, error) {
	out, err := runGit(path, "log", "-1", "--format=%aI")
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(out))
	if err != nil {
		return time.Time{}, model.WrapCLIError(model.ExitGitError, "unparseable commit date", err)
	}
	return ts, nil
}

// HasUncommittedChanges reports whether the working tree at path has
// staged, unstaged, or untracked changes.
func (m *Manager) HasUncommittedChanges(path string) (bool, error) {
	out, err := runGit(path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// runGit executes git with -C repoPath so git changes into the target
// directory itself. Stdout is returned on success; on failure the
// trimmed stderr is folded into the error message.
func runGit(repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}
	return stdout.String(), nil
}
