// Package cli — rename.go implements "coppice rename".
//
// Rename only touches the display name overlay; the directory-derived
// name, branch, allocation key, and ports never change.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/coppice/internal/model"
	"github.com/mmr-tortoise/coppice/internal/state"
	"github.com/mmr-tortoise/coppice/internal/term"
)

func NewRenameCommand() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "rename [worktree] <new-name>",
		Short: "Set or clear a worktree's display name",
		Long: `Assign a display name to a worktree. The display name takes precedence
over the generated directory name in listings, identifier matching, and
tmux session names. The directory, branch, and ports are unaffected.

With one argument the current worktree is renamed; with two, the first
selects the worktree. --clear (or an empty name) removes the display name.

Examples:
  coppice rename login-fix
  coppice rename swift-falcon login-fix
  coppice rename swift-falcon --clear`,
		Args:              cobra.RangeArgs(0, 2),
		ValidArgsFunction: worktreeNameCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier, newName := "", ""
			switch {
			case clear && len(args) <= 1:
				if len(args) == 1 {
					identifier = args[0]
				}
			case !clear && len(args) == 1:
				newName = args[0]
			case !clear && len(args) == 2:
				identifier, newName = args[0], args[1]
			default:
				return model.NewCLIError(model.ExitGeneralError, "rename needs a new name or --clear")
			}
			// An explicit empty name is a clear, same as --clear.
			if !clear && len(args) > 0 && newName == "" {
				clear = true
			}
			return runRename(identifier, newName, clear)
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the display name")

	return cmd
}

func runRename(identifier, newName string, clear bool) error {
	st, err := resolveWorktree(identifier)
	if err != nil {
		return err
	}
	oldEffective := st.EffectiveName()

	if clear {
		st.DisplayName = ""
	} else {
		if err := model.ValidateDisplayName(newName); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "invalid display name", err)
		}
		// A display name must stay unique across all known worktrees,
		// checked against names and display names alike at write time.
		// Self is excluded by directory, the one stable identity.
		all, err := state.FindAll()
		if err != nil {
			return err
		}
		for _, other := range all {
			if other.WorktreeDir == st.WorktreeDir {
				continue
			}
			if other.Name == newName || (other.HasCustomName() && other.DisplayName == newName) {
				return model.NewCLIError(model.ExitGeneralError,
					fmt.Sprintf("name %q is already in use by %s", newName, other.AllocationKey))
			}
		}
		st.DisplayName = newName
	}

	if err := state.Save(st); err != nil {
		return err
	}

	// The tmux session is named after the effective name, so the old
	// session no longer matches. Kill it; the next launch recreates it
	// under the new name.
	if oldEffective != st.EffectiveName() {
		term.KillTmuxSession(st.ProjectName, oldEffective)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(st, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	if clear {
		fmt.Printf("%s display name cleared, now %s\n",
			successStyle.Render("Renamed:"), nameStyle.Render(st.Name))
		return nil
	}
	fmt.Printf("%s %s %s %s\n", successStyle.Render("Renamed:"),
		dimStyle.Render(oldEffective), dimStyle.Render("->"), nameStyle.Render(st.EffectiveName()))
	return nil
}
