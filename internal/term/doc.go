// Package term opens worktrees in a terminal.
//
// The preferred target is tmux: each worktree gets a session named
// "<project>-<effective-name>" so switching between environments is a
// session switch. When tmux is not around, a handful of common terminal
// emulators can be launched with the worktree as working directory, and
// when nothing can be detected the CLI falls back to printing a cd hint.
package term
