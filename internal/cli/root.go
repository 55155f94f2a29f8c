// Package cli implements the cobra-based CLI commands for coppice.
//
// Each subcommand (init, new, list, status, path, run, stop, close,
// cleanup, rename) is defined in its own file within this package. This
// file defines the root command that serves as the parent for all
// subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/coppice/internal/logger"
	"github.com/mmr-tortoise/coppice/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput switches all command output to JSON for machine
	// consumption.
	jsonOutput bool

	// verbose enables debug-level logging.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action — it only
// provides help text and global flags. Actual functionality lives in
// the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coppice",
		Short: "Ephemeral git worktree environments with isolated ports",
		Long: `coppice manages ephemeral development environments on top of git worktrees.

Each worktree gets a generated name, its own branch, a block of TCP ports
guaranteed not to collide with any other worktree on the machine, and
optional lifecycle scripts (setup/run/stop/close) that receive all of this
through WORKTREE_* environment variables.`,

		// We format errors ourselves (text or JSON based on --json), so
		// cobra must not print usage or errors on every failure.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if path, err := logger.DefaultLogPath(); err == nil {
				_ = logger.Init(path)
			}
			if verbose {
				logger.SetDebug(true)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewNewCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewPathCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewCloseCommand())
	rootCmd.AddCommand(NewCleanupCommand())
	rootCmd.AddCommand(NewRenameCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into OS exit
// codes. CLIError values carry their own code; anything else exits 1.
func Execute(rootCmd *cobra.Command) {
	err := rootCmd.Execute()
	logger.Close()
	if err == nil {
		return
	}

	if cliErr, ok := err.(*model.CLIError); ok {
		printError(cliErr.Message, cliErr.Err)
		os.Exit(int(cliErr.Code))
	}
	printError(err.Error(), nil)
	os.Exit(int(model.ExitGeneralError))
}

// printError outputs an error in the format selected by --json. Errors
// go to stderr either way; stdout is reserved for command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]any{"error": map[string]any{"message": message}}
		if underlying != nil {
			errObj["error"].(map[string]any)["detail"] = underlying.Error()
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
		return
	}
	if underlying != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", errorPrefix(), message, underlying)
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorPrefix(), message)
	}
}

// IsJSONOutput returns whether the --json flag is set. Subcommands use
// this to pick their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
