// Package model defines the domain types and value objects for the
// coppice CLI.
//
// This package contains pure data structures with no external dependencies.
// The central entity is WorktreeState, the per-worktree record persisted as
// state.json inside each worktree directory. Everything else in the
// application passes these values around; persistence lives in
// internal/state and internal/port.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
