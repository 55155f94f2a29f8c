// Package cli — resolve.go holds the shared identifier-resolution
// logic used by every command that takes an optional worktree argument.
//
// Resolution order: with no identifier, the current directory is walked
// upward for a state file ("am I inside a worktree"); with one, all
// known worktrees are matched on name, display name, and allocation-key
// suffix. Multiple matches fall back to an interactive pick.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/coppice/internal/model"
	"github.com/mmr-tortoise/coppice/internal/state"
)

// resolveWorktree finds the worktree a command should operate on.
func resolveWorktree(identifier string) (*model.WorktreeState, error) {
	if identifier == "" {
		st, err := state.Detect()
		if err != nil {
			return nil, err
		}
		if st == nil {
			return nil, model.NewCLIError(model.ExitWorktreeNotFound,
				"not inside a worktree; pass a worktree name")
		}
		return st, nil
	}

	matches, err := state.FindByIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, model.NewCLIError(model.ExitWorktreeNotFound,
			fmt.Sprintf("no worktree matches %q", identifier))
	case 1:
		return matches[0], nil
	}
	return pickWorktree(matches)
}

// pickWorktree asks the user to choose among ambiguous matches. In JSON
// mode there is no interactivity, so ambiguity is an error.
func pickWorktree(matches []*model.WorktreeState) (*model.WorktreeState, error) {
	if jsonOutput {
		return nil, model.NewCLIError(model.ExitWorktreeNotFound,
			fmt.Sprintf("identifier matches %d worktrees", len(matches)))
	}

	fmt.Println(headerStyle.Render("Multiple worktrees match:"))
	for i, st := range matches {
		fmt.Printf("  %d) %s %s\n", i+1, nameStyle.Render(st.EffectiveName()),
			dimStyle.Render(st.AllocationKey))
	}
	fmt.Print("Select [1]: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, model.NewCLIError(model.ExitUserCancelled, "selection cancelled")
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return matches[0], nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(matches) {
		return nil, model.NewCLIError(model.ExitUserCancelled,
			fmt.Sprintf("invalid selection %q", line))
	}
	return matches[n-1], nil
}

// confirm prompts for a yes/no answer, returning false on anything but
// an explicit yes. JSON mode never prompts.
func confirm(prompt string) bool {
	if jsonOutput {
		return false
	}
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// worktreeNameCompletion offers known worktree names and display names
// for shell completion of positional identifier arguments.
func worktreeNameCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	all, err := state.FindAll()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, st := range all {
		if strings.HasPrefix(st.Name, toComplete) {
			names = append(names, st.Name)
		}
		if st.HasCustomName() && strings.HasPrefix(st.DisplayName, toComplete) {
			names = append(names, st.DisplayName)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
