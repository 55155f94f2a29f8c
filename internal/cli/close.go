// Package cli — close.go implements "coppice close".
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/coppice/internal/model"
)

type closeFlags struct {
	force        bool // --force: skip confirmation
	deleteBranch bool // --delete-branch: remove the branch too
}

func NewCloseCommand() *cobra.Command {
	flags := &closeFlags{}

	cmd := &cobra.Command{
		Use:   "close [worktree]",
		Short: "Remove a worktree environment",
		Long: `Remove a worktree: run its close.sh cleanup script, kill its tmux
session, release its ports, and delete the git worktree directory.

With no argument, the worktree containing the current directory is closed.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: worktreeNameCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) == 1 {
				identifier = args[0]
			}
			return runClose(identifier, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Don't ask for confirmation")
	cmd.Flags().BoolVar(&flags.deleteBranch, "delete-branch", false, "Also delete the worktree's branch")

	return cmd
}

func runClose(identifier string, flags *closeFlags) error {
	st, err := resolveWorktree(identifier)
	if err != nil {
		return err
	}

	if !flags.force {
		prompt := fmt.Sprintf("Close worktree %s?", st.EffectiveName())
		if len(st.Ports) > 0 {
			prompt = fmt.Sprintf("Close worktree %s and release ports %d-%d?",
				st.EffectiveName(), st.Ports[0], st.Ports[len(st.Ports)-1])
		}
		if !confirm(prompt) {
			return model.NewCLIError(model.ExitUserCancelled, "close cancelled")
		}
	}

	if err := removeWorktree(st, flags.deleteBranch); err != nil {
		return err
	}

	if IsJSONOutput() {
		data, _ := json.Marshal(map[string]any{"closed": st.Name, "allocationKey": st.AllocationKey})
		fmt.Println(string(data))
		return nil
	}
	fmt.Printf("%s %s\n", successStyle.Render("Closed"), nameStyle.Render(st.EffectiveName()))
	return nil
}
