// Package cli — cleanup.go implements "coppice cleanup", the bulk
// removal workflow for abandoned worktrees.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/coppice/internal/git"
	"github.com/mmr-tortoise/coppice/internal/model"
	"github.com/mmr-tortoise/coppice/internal/port"
	"github.com/mmr-tortoise/coppice/internal/state"
)

type cleanupFlags struct {
	olderThan int  // --older-than: only offer worktrees inactive at least N days
	force     bool // --force: delete without the final confirmation
	all       bool // --all: select every candidate without prompting
}

// worktreeActivity pairs a worktree with how long it has been idle,
// judged by its latest commit (falling back to creation time when the
// tree has no commits of its own).
type worktreeActivity struct {
	state        *model.WorktreeState
	lastCommit   time.Time
	daysInactive int
}

func NewCleanupCommand() *cobra.Command {
	flags := &cleanupFlags{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove abandoned worktrees in bulk",
		Long: `Show all worktrees sorted by inactivity and remove the selected ones,
releasing their ports. Inactivity is judged by the latest commit in each
worktree. Orphaned port allocations are reclaimed as well.

Examples:
  coppice cleanup
  coppice cleanup --older-than 30
  coppice cleanup --older-than 30 --all --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(flags)
		},
	}

	cmd.Flags().IntVar(&flags.olderThan, "older-than", 0, "Only offer worktrees inactive for at least N days")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&flags.all, "all", false, "Select all candidates without prompting")

	return cmd
}

func runCleanup(flags *cleanupFlags) error {
	// Reclaim allocations with no backing worktree first; they need no
	// selection or confirmation.
	if store, err := port.OpenDefault(); err == nil {
		if removed := store.CleanupStale(); len(removed) > 0 {
			_ = store.Save()
			if !IsJSONOutput() {
				fmt.Printf("%s %d orphaned port allocation(s)\n", successStyle.Render("Reclaimed"), len(removed))
			}
		}
	}

	candidates, err := collectActivity()
	if err != nil {
		return err
	}
	if flags.olderThan > 0 {
		var aged []worktreeActivity
		for _, wa := range candidates {
			if wa.daysInactive >= flags.olderThan {
				aged = append(aged, wa)
			}
		}
		candidates = aged
	}
	if len(candidates) == 0 {
		if !IsJSONOutput() {
			fmt.Println(dimStyle.Render("No worktrees to clean up."))
		}
		return nil
	}

	printActivityTable(candidates)

	var selected []worktreeActivity
	if flags.all {
		selected = candidates
	} else {
		selected, err = promptSelection(candidates)
		if err != nil {
			return err
		}
	}
	if len(selected) == 0 {
		fmt.Println(dimStyle.Render("Nothing selected."))
		return nil
	}

	if !flags.force {
		fmt.Printf("\n%s %d worktree(s):\n", warnStyle.Render("Will delete"), len(selected))
		for _, wa := range selected {
			fmt.Printf("  - %s/%s\n", wa.state.ProjectName, nameStyle.Render(wa.state.EffectiveName()))
		}
		if !confirm("Proceed?") {
			return model.NewCLIError(model.ExitUserCancelled, "cleanup cancelled")
		}
	}

	for _, wa := range selected {
		if err := removeWorktree(wa.state, false); err != nil {
			fmt.Fprintf(os.Stderr, "%s failed to remove %s: %v\n",
				warnStyle.Render("warning:"), wa.state.EffectiveName(), err)
			continue
		}
		fmt.Printf("%s %s\n", successStyle.Render("Removed"), nameStyle.Render(wa.state.EffectiveName()))
	}
	return nil
}

func collectActivity() ([]worktreeActivity, error) {
	worktrees, err := state.FindAll()
	if err != nil {
		return nil, err
	}

	gm := git.NewManager()
	now := time.Now()
	out := make([]worktreeActivity, 0, len(worktrees))
	for _, st := range worktrees {
		wa := worktreeActivity{state: st}
		if ts, err := gm.LatestCommitDate(st.WorktreeDir); err == nil {
			wa.lastCommit = ts
			wa.daysInactive = int(now.Sub(ts).Hours() / 24)
		} else {
			wa.daysInactive = int(now.Sub(st.CreatedAt).Hours() / 24)
		}
		out = append(out, wa)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].daysInactive > out[j].daysInactive })
	return out, nil
}

func printActivityTable(candidates []worktreeActivity) {
	fmt.Println()
	fmt.Println(headerStyle.Render("Worktrees (sorted by inactivity):"))
	for i, wa := range candidates {
		lastCommit := "unknown"
		if !wa.lastCommit.IsZero() {
			lastCommit = wa.lastCommit.Format("2006-01-02")
		}
		inactive := formatInactiveDays(wa.daysInactive)
		switch {
		case wa.daysInactive > 30:
			inactive = errorStyle.Render(inactive)
		case wa.daysInactive > 7:
			inactive = warnStyle.Render(inactive)
		}

		name := wa.state.EffectiveName()
		if wa.state.HasCustomName() {
			name += " (" + wa.state.Name + ")"
		}
		fmt.Printf("  %s  %-20s %-28s %s %s\n",
			dimStyle.Render(fmt.Sprintf("%2d)", i+1)),
			wa.state.ProjectName, nameStyle.Render(name),
			dimStyle.Render(lastCommit), inactive)
	}
}

func formatInactiveDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "1 day"
	case days < 7:
		return fmt.Sprintf("%d days", days)
	case days < 30:
		return fmt.Sprintf("%d weeks", days/7)
	default:
		return fmt.Sprintf("%d months", days/30)
	}
}

// promptSelection reads a comma-separated number list, "all", or an
// empty line (cancel) from the user.
func promptSelection(candidates []worktreeActivity) ([]worktreeActivity, error) {
	if jsonOutput {
		return nil, model.NewCLIError(model.ExitGeneralError,
			"interactive selection is unavailable with --json; use --all or --older-than")
	}

	fmt.Println("\nEnter numbers to delete (comma-separated), 'all', or press Enter to cancel:")
	fmt.Print("> ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, model.NewCLIError(model.ExitUserCancelled, "selection cancelled")
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if strings.EqualFold(line, "all") {
		return candidates, nil
	}

	var selected []worktreeActivity
	for _, tok := range strings.Split(line, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n < 1 || n > len(candidates) {
			return nil, model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("invalid selection %q", tok))
		}
		selected = append(selected, candidates[n-1])
	}
	return selected, nil
}
