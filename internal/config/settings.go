package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/coppice/internal/model"
)

// Default values applied when a settings field is absent.
const (
	DefaultPortCount      = 10
	DefaultPortRangeStart = 50000
	DefaultPortRangeEnd   = 60000
	DefaultBranchPrefix   = "worktree/"
)

// Settings holds the team-shared project configuration, stored at
// .worktree/settings.json and committed to the repository.
//
// AutoLaunchTerminal and Terminal are pointers/optional so that a project
// can either override the user's preference or stay silent about it.
type Settings struct {
	// PortCount is how many consecutive ports each worktree reserves.
	PortCount uint16 `json:"portCount"`

	// PortRangeStart and PortRangeEnd bound the search for free ports.
	// The end is exclusive.
	PortRangeStart uint16 `json:"portRangeStart"`
	PortRangeEnd   uint16 `json:"portRangeEnd"`

	// BranchPrefix is prepended to generated worktree names to form the
	// branch name (e.g., "worktree/swift-falcon").
	BranchPrefix string `json:"branchPrefix"`

	// AutoLaunchTerminal overrides the user preference when set.
	AutoLaunchTerminal *bool `json:"autoLaunchTerminal,omitempty"`

	// Terminal overrides the user's terminal choice when set.
	Terminal string `json:"terminal,omitempty"`
}

// DefaultSettings returns the settings used when a project has no
// settings.json or leaves fields unset.
func DefaultSettings() Settings {
	return Settings{
		PortCount:      DefaultPortCount,
		PortRangeStart: DefaultPortRangeStart,
		PortRangeEnd:   DefaultPortRangeEnd,
		BranchPrefix:   DefaultBranchPrefix,
	}
}

// UserSettings holds personal preferences that apply across all projects,
// stored at ~/.config/worktree/config.json.
type UserSettings struct {
	// AutoLaunchTerminal controls whether creating a worktree opens a
	// terminal in it.
	AutoLaunchTerminal *bool `json:"autoLaunchTerminal,omitempty"`

	// Terminal is the preferred terminal emulator (e.g., "tmux",
	// "ghostty"). Empty means auto-detect.
	Terminal string `json:"terminal,omitempty"`
}

// LocalSettings holds gitignored per-machine overrides, stored at
// .worktree/settings.local.json.
type LocalSettings struct {
	// WorktreeDir overrides the default ~/.worktree/worktrees/<project>/
	// location for this machine.
	WorktreeDir string `json:"worktreeDir,omitempty"`
}

// Merged is the effective runtime configuration after layering
// project settings over user settings over defaults.
type Merged struct {
	PortCount          uint16
	PortRangeStart     uint16
	PortRangeEnd       uint16
	BranchPrefix       string
	AutoLaunchTerminal bool
	Terminal           string
	WorktreeDir        string
}

// loadJSONC reads path and unmarshals it into v, tolerating JSONC
// comments and trailing commas. A missing file returns (false, nil) and
// leaves v untouched, so callers can treat absence as "use defaults".
func loadJSONC(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, model.IOError("read", path, err)
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return false, model.ParseError(path, err)
	}
	return true, nil
}

// writeJSON marshals v with indentation and writes it to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return model.IOError("write", path, err)
	}
	return nil
}

// LoadSettings reads the project settings for a repository root. Fields
// absent from the file keep their default values; a missing file yields
// DefaultSettings entirely.
func LoadSettings(root string) (Settings, error) {
	s := DefaultSettings()
	_, err := loadJSONC(SettingsFileIn(root), &s)
	return s, err
}

// SaveSettings writes the project settings file under a repository root.
// The .worktree directory must already exist.
func SaveSettings(root string, s Settings) error {
	return writeJSON(SettingsFileIn(root), s)
}

// WriteDefaultSettings creates .worktree/settings.json with default
// values under a repository root, creating the directory if needed.
func WriteDefaultSettings(root string) error {
	dir := ProjectConfigDirIn(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.IOError("create", dir, err)
	}
	return SaveSettings(root, DefaultSettings())
}

// LoadLocalSettings reads the per-machine overrides for a repository root.
// A missing file is not an error.
func LoadLocalSettings(root string) (LocalSettings, error) {
	var s LocalSettings
	_, err := loadJSONC(LocalSettingsFileIn(root), &s)
	return s, err
}

// SaveLocalSettings writes the per-machine settings file under a
// repository root.
func SaveLocalSettings(root string, s LocalSettings) error {
	return writeJSON(LocalSettingsFileIn(root), s)
}

// LoadUserSettings reads ~/.config/worktree/config.json. A missing file
// yields zero-value settings, which downstream merging treats as "no
// preference expressed".
func LoadUserSettings() (UserSettings, error) {
	var s UserSettings
	path, err := UserConfigFile()
	if err != nil {
		return s, err
	}
	_, err = loadJSONC(path, &s)
	return s, err
}

// SaveUserSettings writes ~/.config/worktree/config.json, creating the
// directory if needed.
func SaveUserSettings(s UserSettings) error {
	if err := EnsureUserConfigDir(); err != nil {
		return err
	}
	path, err := UserConfigFile()
	if err != nil {
		return err
	}
	return writeJSON(path, s)
}

// UserSettingsExist reports whether the per-user configuration file has
// been written yet.
func UserSettingsExist() (bool, error) {
	path, err := UserConfigFile()
	if err != nil {
		return false, err
	}
	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		return false, nil
	}
	if statErr != nil {
		return false, model.IOError("stat", path, statErr)
	}
	return true, nil
}

// LoadMerged layers configuration for a repository root with priority
// project > user > defaults, and picks up the per-machine worktree
// directory override.
func LoadMerged(root string) (Merged, error) {
	settings, err := LoadSettings(root)
	if err != nil {
		return Merged{}, err
	}
	local, err := LoadLocalSettings(root)
	if err != nil {
		return Merged{}, err
	}
	user, err := LoadUserSettings()
	if err != nil {
		return Merged{}, err
	}

	// Auto-launch defaults to true when neither scope expresses a
	// preference.
	autoLaunch := true
	if user.AutoLaunchTerminal != nil {
		autoLaunch = *user.AutoLaunchTerminal
	}
	if settings.AutoLaunchTerminal != nil {
		autoLaunch = *settings.AutoLaunchTerminal
	}

	terminal := user.Terminal
	if settings.Terminal != "" {
		terminal = settings.Terminal
	}

	return Merged{
		PortCount:          settings.PortCount,
		PortRangeStart:     settings.PortRangeStart,
		PortRangeEnd:       settings.PortRangeEnd,
		BranchPrefix:       settings.BranchPrefix,
		AutoLaunchTerminal: autoLaunch,
		Terminal:           terminal,
		WorktreeDir:        local.WorktreeDir,
	}, nil
}

// WorktreeBaseDir returns the directory new worktrees for a project are
// created under: the per-machine override when set, otherwise
// ~/.worktree/worktrees/<project>/.
func (m Merged) WorktreeBaseDir(projectName string) (string, error) {
	if m.WorktreeDir != "" {
		return m.WorktreeDir, nil
	}
	dir, err := GlobalWorktreesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, projectName), nil
}

// IsInitialized reports whether a repository root has a committed
// .worktree/settings.json.
func IsInitialized(root string) bool {
	_, err := os.Stat(SettingsFileIn(root))
	return err == nil
}
