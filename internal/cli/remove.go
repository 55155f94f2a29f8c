// Package cli — remove.go holds the teardown sequence shared by close
// and cleanup.
package cli

import (
	"fmt"
	"os"

	"github.com/mmr-tortoise/coppice/internal/git"
	"github.com/mmr-tortoise/coppice/internal/logger"
	"github.com/mmr-tortoise/coppice/internal/model"
	"github.com/mmr-tortoise/coppice/internal/port"
	"github.com/mmr-tortoise/coppice/internal/scripts"
	"github.com/mmr-tortoise/coppice/internal/term"
)

// removeWorktree tears down one worktree environment: close.sh, tmux
// session, port allocation, then the git worktree itself and optionally
// its branch.
//
// Only the final git removal can fail the operation; a failing close.sh,
// a missing tmux session, or an absent allocation record are logged and
// skipped so the worktree never ends up half-removed.
func removeWorktree(st *model.WorktreeState, deleteBranch bool) error {
	log := logger.WithComponent("remove")
	log.Info("removing worktree", "key", st.AllocationKey)

	scripts.RunIgnoreErrors(st.WorktreeDir, scripts.CloseScript, st)
	term.KillTmuxSession(st.ProjectName, st.EffectiveName())

	if store, err := port.OpenDefault(); err == nil {
		if _, err := store.Deallocate(st.AllocationKey); err != nil {
			log.Warn("port deallocation failed", "key", st.AllocationKey, "error", err)
		}
	}

	gm := git.NewManager()
	if err := gm.RemoveWorktree(st.OriginalDir, st.WorktreeDir); err != nil {
		return err
	}

	if deleteBranch && st.Branch != "" {
		if err := gm.DeleteBranch(st.OriginalDir, st.Branch); err != nil {
			// The worktree is gone; a surviving branch is an annoyance,
			// not a failure.
			fmt.Fprintf(os.Stderr, "%s could not delete branch %s: %v\n",
				warnStyle.Render("warning:"), st.Branch, err)
		}
	}
	return nil
}
