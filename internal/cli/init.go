// Package cli — init.go implements "coppice init".
//
// Init prepares a repository for worktree use: it writes the team
// settings file, a .gitignore for the per-machine override, and the
// four starter lifecycle scripts under .worktree/. Re-running init is
// safe; existing files are never overwritten.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/coppice/internal/config"
	"github.com/mmr-tortoise/coppice/internal/git"
	"github.com/mmr-tortoise/coppice/internal/model"
	"github.com/mmr-tortoise/coppice/internal/scripts"
)

func NewInitCommand() *cobra.Command {
	var noScripts bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Prepare the current repository for worktree environments",
		Long: `Create the .worktree/ directory in the repository root with default
settings and starter lifecycle scripts (setup.sh, run.sh, stop.sh, close.sh).

Existing files are left untouched, so init can be re-run safely after
pulling a partially configured .worktree/ directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitWith(noScripts)
		},
	}

	cmd.Flags().BoolVar(&noScripts, "no-scripts", false, "Don't write the starter lifecycle scripts")

	return cmd
}

func runInit() error {
	return runInitWith(false)
}

func runInitWith(noScripts bool) error {
	gm := git.NewManager()
	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}
	if !gm.IsRepo(cwd) {
		return model.NewCLIError(model.ExitGitError, "not inside a git repository")
	}
	root, err := gm.MainRepoRoot(cwd)
	if err != nil {
		return err
	}

	var created []string

	settingsPath := config.SettingsFileIn(root)
	if _, statErr := os.Stat(settingsPath); os.IsNotExist(statErr) {
		if err := config.WriteDefaultSettings(root); err != nil {
			return err
		}
		created = append(created, "settings.json")
	}

	// The per-machine override must never be committed.
	gitignorePath := filepath.Join(config.ProjectConfigDirIn(root), ".gitignore")
	if _, statErr := os.Stat(gitignorePath); os.IsNotExist(statErr) {
		if err := os.WriteFile(gitignorePath, []byte("settings.local.json\n"), 0o644); err != nil {
			return model.IOError("write", gitignorePath, err)
		}
		created = append(created, ".gitignore")
	}

	if !noScripts {
		written, err := scripts.WriteTemplates(root)
		if err != nil {
			return err
		}
		created = append(created, written...)
	}

	if IsJSONOutput() {
		out := map[string]any{"root": root, "created": created}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(created) == 0 {
		fmt.Println("Repository already initialized, nothing to do.")
		return nil
	}
	fmt.Printf("Initialized %s\n", nameStyle.Render(config.ProjectConfigDirIn(root)))
	for _, name := range created {
		fmt.Printf("  %s %s\n", successStyle.Render("created"), name)
	}
	fmt.Println(dimStyle.Render("Edit the scripts to match your project, then run: coppice new"))
	return nil
}
