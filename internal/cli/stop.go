// Package cli — stop.go implements "coppice stop".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/coppice/internal/scripts"
	"github.com/mmr-tortoise/coppice/internal/term"
)

func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [worktree]",
		Short: "Stop a worktree's services",
		Long: `Execute .worktree/stop.sh inside a worktree and kill its tmux session
if one exists. The worktree itself and its port allocation are kept;
use close to remove them.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: worktreeNameCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) == 1 {
				identifier = args[0]
			}
			st, err := resolveWorktree(identifier)
			if err != nil {
				return err
			}

			if scripts.Exists(st.WorktreeDir, scripts.StopScript) {
				if err := scripts.Run(st.WorktreeDir, scripts.StopScript, st); err != nil {
					return err
				}
			}
			if term.KillTmuxSession(st.ProjectName, st.EffectiveName()) && !IsJSONOutput() {
				fmt.Println(dimStyle.Render("Killed tmux session " + term.SessionName(st.ProjectName, st.EffectiveName())))
			}
			if !IsJSONOutput() {
				fmt.Printf("%s %s\n", successStyle.Render("Stopped"), nameStyle.Render(st.EffectiveName()))
			}
			return nil
		},
	}
}
