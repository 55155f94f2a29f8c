// Package cli — run.go implements "coppice run".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/coppice/internal/scripts"
)

func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run [worktree]",
		Short: "Run the worktree's run.sh lifecycle script",
		Long: `Execute .worktree/run.sh inside a worktree with the WORKTREE_* environment
variables set (name, project, directories, allocation key, and one
WORKTREE_PORT_<i> per allocated port).

With no argument, the worktree containing the current directory is used.`,
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
			if !IsJSONOutput() {
				fmt.Printf("%s %s\n", headerStyle.Render("Starting:"), nameStyle.Render(st.EffectiveName()))
			}
			return scripts.Run(st.WorktreeDir, scripts.RunScript, st)
		},
	}
}
