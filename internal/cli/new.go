// Package cli — new.go implements "coppice new", the primary workflow.
//
// It creates a git worktree on a fresh branch under a generated name,
// reserves a block of ports for it, persists the state record, runs the
// project's setup script, and drops the user into a terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/coppice/internal/config"
	"github.com/mmr-tortoise/coppice/internal/git"
	"github.com/mmr-tortoise/coppice/internal/logger"
	"github.com/mmr-tortoise/coppice/internal/model"
	"github.com/mmr-tortoise/coppice/internal/names"
	"github.com/mmr-tortoise/coppice/internal/port"
	"github.com/mmr-tortoise/coppice/internal/scripts"
	"github.com/mmr-tortoise/coppice/internal/state"
	"github.com/mmr-tortoise/coppice/internal/term"
)

type newFlags struct {
	noTerminal bool // --no-terminal: skip terminal launch
	noSetup    bool // --no-setup: skip setup.sh
}

func NewNewCommand() *cobra.Command {
	flags := &newFlags{}

	cmd := &cobra.Command{
		Use:   "new [description]",
		Short: "Create a new worktree environment",
		Long: `Create a git worktree on a fresh branch with its own block of ports.

The worktree gets a generated adjective-noun name. An optional description
argument becomes its display name, shown in listings and used for the tmux
session in place of the generated name.

Examples:
  coppice new
  coppice new "fix login bug"
  coppice new --no-terminal`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			param := ""
			if len(args) == 1 {
				param = args[0]
			}
			return runNew(param, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noTerminal, "no-terminal", false, "Don't open a terminal in the new worktree")
	cmd.Flags().BoolVar(&flags.noSetup, "no-setup", false, "Skip the setup.sh lifecycle script")

	return cmd
}

func runNew(param string, flags *newFlags) error {
	gm := git.NewManager()
	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}
	if !gm.IsRepo(cwd) {
		return model.NewCLIError(model.ExitGitError, "not inside a git repository")
	}

	// Anchor on the main checkout so `new` works from inside another
	// worktree too.
	repoRoot, err := gm.MainRepoRoot(cwd)
	if err != nil {
		return err
	}
	projectName := filepath.Base(repoRoot)

	if !config.IsInitialized(repoRoot) {
		if !confirm("Project not initialized. Initialize it now?") {
			return model.NewCLIError(model.ExitGeneralError, "project not initialized; run: coppice init")
		}
		if err := runInit(); err != nil {
			return err
		}
	}

	if param != "" {
		if err := model.ValidateDisplayName(param); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "invalid description", err)
		}
	}

	settings, err := config.LoadMerged(repoRoot)
	if err != nil {
		return err
	}
	baseDir, err := settings.WorktreeBaseDir(projectName)
	if err != nil {
		return err
	}

	// Pick a name whose branch and directory are both unclaimed; on
	// collision, retry with a random hex suffix.
	worktreeName, branch, worktreeDir, err := pickName(gm, repoRoot, settings.BranchPrefix, baseDir)
	if err != nil {
		return err
	}

	log := logger.WithComponent("new")
	log.Info("creating worktree", "project", projectName, "name", worktreeName, "branch", branch)

	if !IsJSONOutput() {
		display := nameStyle.Render(worktreeName)
		if param != "" {
			display = nameStyle.Render(param) + " " + dimStyle.Render(worktreeName)
		}
		fmt.Printf("%s %s\n", headerStyle.Render("Creating worktree:"), display)
		fmt.Printf("  %s %s\n", dimStyle.Render("Branch:"), branch)
		fmt.Printf("  %s %s\n", dimStyle.Render("Path:"), worktreeDir)
	}

	if err := gm.AddWorktree(repoRoot, branch, worktreeDir); err != nil {
		return err
	}

	store, err := port.OpenDefault()
	if err != nil {
		return err
	}
	allocationKey := projectName + "/" + worktreeName
	allocation, err := store.Allocate(int(settings.PortCount), allocationKey,
		settings.PortRangeStart, settings.PortRangeEnd)
	if err != nil {
		// Roll back the worktree so a failed allocation doesn't leave a
		// half-provisioned environment behind.
		if rmErr := gm.RemoveWorktree(repoRoot, worktreeDir); rmErr != nil {
			log.Warn("rollback failed", "path", worktreeDir, "error", rmErr)
		}
		if _, ok := err.(*port.ExhaustedError); ok {
			return model.WrapCLIError(model.ExitPortAllocationFailed, "port allocation failed", err)
		}
		return err
	}

	st := model.NewWorktreeState(worktreeName, projectName, worktreeDir)
	st.OriginalDir = repoRoot
	st.Branch = branch
	st.Ports = allocation.Ports
	st.Param = param
	st.DisplayName = param
	if err := state.Save(st); err != nil {
		return err
	}

	if !flags.noSetup && scripts.Exists(worktreeDir, scripts.SetupScript) {
		if !IsJSONOutput() {
			fmt.Println("  Running setup script...")
		}
		if runErr := scripts.Run(worktreeDir, scripts.SetupScript, st); runErr != nil {
			// The worktree is usable without setup; report and continue.
			fmt.Fprintf(os.Stderr, "  %s setup failed: %v\n", warnStyle.Render("warning:"), runErr)
		}
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(st, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Worktree created."))
	fmt.Printf("  %s %s\n", dimStyle.Render("Name:"), nameStyle.Render(st.EffectiveName()))
	fmt.Printf("  %s %s\n", dimStyle.Render("Path:"), worktreeDir)
	if len(st.Ports) > 0 {
		fmt.Printf("  %s %d-%d\n", dimStyle.Render("Ports:"), st.Ports[0], st.Ports[len(st.Ports)-1])
	}

	if flags.noTerminal || !settings.AutoLaunchTerminal {
		fmt.Printf("\nTo start working:\n  %s\n", term.ManualCommand(worktreeDir))
		return nil
	}
	launchTerminal(settings.Terminal, projectName, st.EffectiveName(), worktreeDir)
	return nil
}

// pickName generates candidate names until one is free as both a branch
// and a directory. The first try is a bare adjective-noun pair; after
// that a hex suffix makes collisions vanishingly unlikely.
func pickName(gm *git.Manager, repoRoot, branchPrefix, baseDir string) (name, branch, dir string, err error) {
	for attempt := 0; attempt < 10; attempt++ {
		name = names.Generate()
		if attempt > 0 {
			name = names.WithSuffix(name)
		}
		branch = branchPrefix + name
		dir = filepath.Join(baseDir, name)

		if gm.BranchExists(repoRoot, branch) {
			continue
		}
		if _, statErr := os.Stat(dir); statErr == nil {
			continue
		}
		return name, branch, dir, nil
	}
	return "", "", "", model.NewCLIError(model.ExitGeneralError, "could not generate an unused worktree name")
}

// launchTerminal best-effort opens the worktree in the configured or
// detected terminal, printing a manual hint when it cannot.
func launchTerminal(preferred, projectName, effectiveName, dir string) {
	terminal, ok := term.Parse(preferred)
	if !ok {
		terminal, ok = term.Detect()
	}
	if !ok {
		fmt.Printf("\nNo terminal detected. Run manually:\n  %s\n", dimStyle.Render(term.ManualCommand(dir)))
		return
	}

	var err error
	if terminal == term.Tmux {
		err = term.LaunchTmux(projectName, effectiveName, dir)
	} else {
		err = term.Launch(terminal, dir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to launch terminal: %v\n", warnStyle.Render("warning:"), err)
		fmt.Printf("Run manually:\n  %s\n", dimStyle.Render(term.ManualCommand(dir)))
	}
}
