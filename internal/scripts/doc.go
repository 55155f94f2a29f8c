// Package scripts generates and runs worktree lifecycle scripts.
//
// Each project carries four optional bash hooks under .worktree/
// (setup.sh, run.sh, stop.sh, close.sh) that receive the worktree's
// identity and allocated ports through WORKTREE_* environment
// variables. The variable set is a stable contract: automation written
// against it must keep working across releases.
package scripts
