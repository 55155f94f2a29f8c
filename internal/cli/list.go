// Package cli — list.go implements "coppice list".
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/coppice/internal/git"
	"github.com/mmr-tortoise/coppice/internal/model"
	"github.com/mmr-tortoise/coppice/internal/port"
	"github.com/mmr-tortoise/coppice/internal/state"
)

type listFlags struct {
	all    bool   // --all: don't scope to the current project
	output string // --output: text, json, or yaml
}

func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List worktree environments",
		Long: `List worktrees with their branches, ports, and age.

Inside a repository the listing is scoped to that project; use --all to
see every worktree on the machine. Stale port allocations (whose worktree
no longer exists) are reclaimed as a side effect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.all, "all", "a", false, "List worktrees for all projects")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "text", "Output format: text, json, or yaml")
	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(
		[]string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func runList(flags *listFlags) error {
	// Reclaim allocations whose worktree is gone before listing, so the
	// listing and the allocation file agree.
	if store, err := port.OpenDefault(); err == nil {
		if removed := store.CleanupStale(); len(removed) > 0 {
			_ = store.Save()
		}
	}

	worktrees, err := state.FindAll()
	if err != nil {
		return err
	}

	var currentProject string
	if !flags.all {
		currentProject = detectCurrentProject()
	}
	if currentProject != "" {
		var scoped []*model.WorktreeState
		for _, st := range worktrees {
			if st.ProjectName == currentProject {
				scoped = append(scoped, st)
			}
		}
		worktrees = scoped
	}

	format := flags.output
	if IsJSONOutput() {
		format = "json"
	}

	switch format {
	case "json":
		if worktrees == nil {
			worktrees = []*model.WorktreeState{}
		}
		data, err := json.MarshalIndent(worktrees, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(worktrees)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	case "text":
		printWorktreeTable(worktrees, currentProject)
	default:
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("unknown output format %q (want text, json, or yaml)", flags.output))
	}
	return nil
}

// detectCurrentProject resolves the project scope for the listing: the
// surrounding worktree's project when inside one, otherwise the
// surrounding git repository's name, otherwise nothing.
func detectCurrentProject() string {
	if st, err := state.Detect(); err == nil && st != nil {
		return st.ProjectName
	}
	gm := git.NewManager()
	cwd, err := os.Getwd()
	if err != nil || !gm.IsRepo(cwd) {
		return ""
	}
	name, err := gm.ProjectName(cwd)
	if err != nil {
		return ""
	}
	return name
}

func printWorktreeTable(worktrees []*model.WorktreeState, scopedProject string) {
	if len(worktrees) == 0 {
		if scopedProject != "" {
			fmt.Println(dimStyle.Render("No worktrees found for this project. Use --all to see all worktrees."))
		} else {
			fmt.Println(dimStyle.Render("No active worktrees found."))
		}
		return
	}

	showProject := scopedProject == ""
	for _, st := range worktrees {
		name := nameStyle.Render(st.EffectiveName())
		if st.HasCustomName() {
			name += " " + dimStyle.Render(st.Name)
		}
		if showProject {
			name += " " + dimStyle.Render("["+st.ProjectName+"]")
		}
		fmt.Println(name)
		fmt.Printf("  %s %s\n", dimStyle.Render("Branch:"), st.Branch)
		if len(st.Ports) > 0 {
			fmt.Printf("  %s %d-%d\n", dimStyle.Render("Ports:"), st.Ports[0], st.Ports[len(st.Ports)-1])
		}
		fmt.Printf("  %s %s  %s %s\n", dimStyle.Render("Created:"), formatAge(st.CreatedAt),
			dimStyle.Render("Path:"), st.WorktreeDir)
	}
}

// formatAge renders a creation time as a compact relative age.
func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
