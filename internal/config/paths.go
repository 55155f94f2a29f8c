package config

import (
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/coppice/internal/model"
)

// homeDir resolves the user's home directory. Every global path hangs off
// it, so failure here is fatal and carries ExitHomeDirUnavailable.
func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", model.WrapCLIError(model.ExitHomeDirUnavailable,
			"could not determine home directory; ensure HOME is set", err)
	}
	return home, nil
}

// GlobalDir returns the global storage directory (~/.worktree/).
func GlobalDir() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".worktree"), nil
}

// GlobalWorktreesDir returns the default directory that holds worktree
// checkouts, one subdirectory per project (~/.worktree/worktrees/).
func GlobalWorktreesDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "worktrees"), nil
}

// AllocationsFile returns the path of the single global port allocation
// file (~/.worktree/port-allocations.json).
func AllocationsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "port-allocations.json"), nil
}

// LogsDir returns the directory for log files (~/.worktree/logs/).
func LogsDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// UserConfigDir returns the per-user configuration directory
// (~/.config/worktree/).
func UserConfigDir() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "worktree"), nil
}

// UserConfigFile returns the per-user configuration file path
// (~/.config/worktree/config.json).
func UserConfigFile() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ProjectConfigDirName is the per-repository configuration directory,
// holding settings and lifecycle scripts.
const ProjectConfigDirName = ".worktree"

// ProjectConfigDirIn returns the project configuration directory inside the
// given repository root (.worktree/).
func ProjectConfigDirIn(root string) string {
	return filepath.Join(root, ProjectConfigDirName)
}

// SettingsFileIn returns the team-shared settings file path for a root.
func SettingsFileIn(root string) string {
	return filepath.Join(ProjectConfigDirIn(root), "settings.json")
}

// LocalSettingsFileIn returns the gitignored per-machine settings file
// path for a root.
func LocalSettingsFileIn(root string) string {
	return filepath.Join(ProjectConfigDirIn(root), "settings.local.json")
}

// EnsureGlobalDir creates the global storage directory if missing.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.IOError("create", dir, err)
	}
	return nil
}

// EnsureUserConfigDir creates the per-user configuration directory if
// missing.
func EnsureUserConfigDir() error {
	dir, err := UserConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.IOError("create", dir, err)
	}
	return nil
}
