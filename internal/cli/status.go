// Package cli — status.go implements "coppice status".
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/coppice/internal/git"
	"github.com/mmr-tortoise/coppice/internal/model"
)

func NewStatusCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status [worktree]",
		Short: "Show details for a worktree",
		Long: `Show the full record for a worktree: name, branch, ports, paths,
creation time, and whether the tree has uncommitted changes.

With no argument, the worktree containing the current directory is used.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: worktreeNameCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) == 1 {
				identifier = args[0]
			}
			return runStatus(identifier, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, or yaml")
	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(
		[]string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func runStatus(identifier, output string) error {
	st, err := resolveWorktree(identifier)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output = "json"
	}
	switch output {
	case "json":
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(st)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	case "text":
	default:
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("unknown output format %q (want text, json, or yaml)", output))
	}

	fmt.Println(nameStyle.Render(st.EffectiveName()))
	if st.HasCustomName() {
		fmt.Printf("  %s %s\n", dimStyle.Render("Directory name:"), st.Name)
	}
	fmt.Printf("  %s %s\n", dimStyle.Render("Project:"), st.ProjectName)
	fmt.Printf("  %s %s\n", dimStyle.Render("Branch:"), st.Branch)
	fmt.Printf("  %s %s\n", dimStyle.Render("Path:"), st.WorktreeDir)
	fmt.Printf("  %s %s\n", dimStyle.Render("Original:"), st.OriginalDir)
	if len(st.Ports) > 0 {
		fmt.Printf("  %s %d-%d\n", dimStyle.Render("Ports:"), st.Ports[0], st.Ports[len(st.Ports)-1])
	}
	fmt.Printf("  %s %s (%s)\n", dimStyle.Render("Created:"),
		st.CreatedAt.Local().Format("2006-01-02 15:04"), formatAge(st.CreatedAt))
	if st.Param != "" {
		fmt.Printf("  %s %s\n", dimStyle.Render("Param:"), st.Param)
	}

	gm := git.NewManager()
	if dirty, err := gm.HasUncommittedChanges(st.WorktreeDir); err == nil {
		if dirty {
			fmt.Printf("  %s %s\n", dimStyle.Render("Changes:"), warnStyle.Render("uncommitted changes"))
		} else {
			fmt.Printf("  %s %s\n", dimStyle.Render("Changes:"), successStyle.Render("clean"))
		}
	}
	return nil
}
