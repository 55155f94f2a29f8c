package state

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mmr-tortoise/coppice/internal/config"
	"github.com/mmr-tortoise/coppice/internal/model"
)

// Save writes the state document to <worktreeDir>/state.json. The write
// goes to a temp file in the same directory followed by a rename, so a
// crash mid-write never leaves a truncated document behind.
func Save(st *model.WorktreeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(st.WorktreeDir, model.StateFileName)
	tmp, err := os.CreateTemp(st.WorktreeDir, model.StateFileName+".tmp-*")
	if err != nil {
		return model.IOError("create", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return model.IOError("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return model.IOError("write", path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return model.IOError("write", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return model.IOError("rename", path, err)
	}
	return nil
}

// Load reads and parses the state document at <worktreeDir>/state.json.
func Load(worktreeDir string) (*model.WorktreeState, error) {
	path := filepath.Join(worktreeDir, model.StateFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.IOError("read", path, err)
	}

	var st model.WorktreeState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, model.ParseError(path, err)
	}
	return &st, nil
}

// DetectFromDirectory walks upward from startPath through parent
// directories, returning the first state document found or nil when the
// filesystem root is reached without one. This is how a command run from
// any nested subdirectory of a worktree discovers its own identity.
func DetectFromDirectory(startPath string) (*model.WorktreeState, error) {
	dir, err := filepath.Abs(startPath)
	if err != nil {
		return nil, model.IOError("resolve", startPath, err)
	}

	for {
		path := filepath.Join(dir, model.StateFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Detect is DetectFromDirectory anchored at the current working directory.
func Detect() (*model.WorktreeState, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.IOError("getwd", ".", err)
	}
	return DetectFromDirectory(cwd)
}

// FindAllIn collects every worktree state under root, newest first.
// Unreadable or malformed documents are skipped rather than failing the
// whole listing. The walk is bounded at a few levels below root since
// the conventional layout is <root>/<project>/<name>/state.json.
func FindAllIn(root string) ([]*model.WorktreeState, error) {
	var states []*model.WorktreeState

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return nil
			}
			return fs.SkipDir
		}
		if d.IsDir() {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && len(strings.Split(rel, string(filepath.Separator))) > 3 {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() != model.StateFileName {
			return nil
		}
		st, loadErr := Load(filepath.Dir(path))
		if loadErr != nil {
			return nil
		}
		states = append(states, st)
		return nil
	})
	if err != nil {
		return nil, model.IOError("walk", root, err)
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].CreatedAt.After(states[j].CreatedAt)
	})
	return states, nil
}

// FindAll collects every worktree state under the global worktrees
// directory. A missing directory means no worktrees exist yet.
func FindAll() ([]*model.WorktreeState, error) {
	root, err := config.GlobalWorktreesDir()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	return FindAllIn(root)
}

// FindByIdentifier resolves identifier against every known worktree
// using name, display name, and allocation-key suffix matching. Returns
// all matches so callers can disambiguate interactively.
func FindByIdentifier(identifier string) ([]*model.WorktreeState, error) {
	all, err := FindAll()
	if err != nil {
		return nil, err
	}
	var matches []*model.WorktreeState
	for _, st := range all {
		if st.MatchesIdentifier(identifier) {
			matches = append(matches, st)
		}
	}
	return matches, nil
}

// FindForProject filters the global listing down to one project.
func FindForProject(projectName string) ([]*model.WorktreeState, error) {
	all, err := FindAll()
	if err != nil {
		return nil, err
	}
	var out []*model.WorktreeState
	for _, st := range all {
		if st.ProjectName == projectName {
			out = append(out, st)
		}
	}
	return out, nil
}
