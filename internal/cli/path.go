// Package cli — path.go implements "coppice path".
//
// Prints only the worktree directory, so shells can do
// `cd "$(coppice path swift-falcon)"`.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func NewPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path [worktree]",
		Short: "Print a worktree's directory",
		Long: `Print the absolute path of a worktree's directory and nothing else,
for use in shell substitution:

  cd "$(coppice path swift-falcon)"`,
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
			if IsJSONOutput() {
				data, _ := json.Marshal(map[string]string{"path": st.WorktreeDir})
				fmt.Println(string(data))
				return nil
			}
			fmt.Println(st.WorktreeDir)
			return nil
		},
	}
}
