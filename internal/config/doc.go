// Package config centralizes path resolution and settings for coppice.
//
// Three storage scopes exist:
//
//   - Global (~/.worktree/): the port allocation file, the default
//     worktrees directory, and log files. Shared by every project.
//   - User (~/.config/worktree/config.json): personal preferences that
//     apply across all projects (terminal choice, auto-launch).
//   - Project (.worktree/ inside a repository): team-shared settings.json,
//     committed to the repo, plus a gitignored settings.local.json for
//     machine-specific overrides such as a custom worktree directory.
//
// Settings files are parsed with github.com/tidwall/jsonc, so comments and
// trailing commas are tolerated even though the files are written as plain
// JSON.
package config
