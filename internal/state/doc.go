// Package state persists and discovers per-worktree records.
//
// Every worktree carries a single JSON document (state.json) at its
// root. That file is the source of truth for the worktree's identity:
// the port allocator probes for it when reclaiming stale records, and
// commands run from inside a worktree find their own identity by
// walking parent directories until they hit one.
//
// The file is owned by the worktree's own directory: the only writers
// are the initial provisioning step and the rename operation. Removal
// of the worktree directory removes the state with it.
package state
