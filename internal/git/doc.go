// Package git wraps the git CLI for worktree provisioning.
//
// We shell out to `git` rather than using a Go Git library (e.g., go-git)
// because worktree operations require full Git CLI compatibility, and
// go-git's worktree support is limited. All commands run with -C so the
// process working directory never changes.
//
// Errors from git commands carry model.ExitGitError so the CLI maps them
// to the right exit code.
package git
