package term

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/coppice/internal/logger"
	"github.com/mmr-tortoise/coppice/internal/model"
)

// Terminal identifies a supported terminal emulator or multiplexer.
type Terminal string

const (
	Tmux          Terminal = "tmux"
	AppleTerminal Terminal = "terminal"
	ITerm2        Terminal = "iterm2"
	Ghostty       Terminal = "ghostty"
	VSCode        Terminal = "vscode"
	GnomeTerminal Terminal = "gnome-terminal"
	Konsole       Terminal = "konsole"
	Kitty         Terminal = "kitty"
	Alacritty     Terminal = "alacritty"
)

// Parse maps a user-supplied terminal name (settings file or flag) to a
// Terminal. The zero value and false mean the name is unknown.
func Parse(s string) (Terminal, bool) {
	switch strings.ToLower(s) {
	case "tmux":
		return Tmux, true
	case "terminal", "terminal.app", "apple_terminal":
		return AppleTerminal, true
	case "iterm", "iterm2":
		return ITerm2, true
	case "ghostty":
		return Ghostty, true
	case "vscode", "code":
		return VSCode, true
	case "gnome-terminal", "gnome":
		return GnomeTerminal, true
	case "konsole":
		return Konsole, true
	case "kitty":
		return Kitty, true
	case "alacritty":
		return Alacritty, true
	}
	return "", false
}

// Detect guesses the best launch target for this machine. Running
// inside tmux wins outright; otherwise TERM_PROGRAM identifies the host
// terminal, and finally PATH is probed for known emulators.
func Detect() (Terminal, bool) {
	if os.Getenv("TMUX") != "" {
		return Tmux, true
	}

	switch os.Getenv("TERM_PROGRAM") {
	case "Apple_Terminal":
		return AppleTerminal, true
	case "iTerm.app":
		return ITerm2, true
	case "ghostty":
		return Ghostty, true
	case "vscode":
		return VSCode, true
	}

	for _, candidate := range []Terminal{Tmux, GnomeTerminal, Konsole, Kitty, Alacritty} {
		if _, err := exec.LookPath(string(candidate)); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// SessionName returns the tmux session name for a worktree.
func SessionName(projectName, worktreeName string) string {
	return projectName + "-" + worktreeName
}

// LaunchTmux creates (if needed) and enters the tmux session for a
// worktree. Inside an existing tmux client we switch rather than nest.
func LaunchTmux(projectName, worktreeName, dir string) error {
	session := SessionName(projectName, worktreeName)

	exists := exec.Command("tmux", "has-session", "-t", session).Run() == nil
	if !exists {
		if err := exec.Command("tmux", "new-session", "-d", "-s", session, "-c", dir).Run(); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to create tmux session", err)
		}
		logger.WithComponent("term").Info("created tmux session", "session", session)
	}

	var cmd *exec.Cmd
	if os.Getenv("TMUX") != "" {
		cmd = exec.Command("tmux", "switch-client", "-t", session)
	} else {
		cmd = exec.Command("tmux", "attach-session", "-t", session)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to enter tmux session", err)
	}
	return nil
}

// KillTmuxSession tears down the worktree's tmux session if it exists.
// Reports whether a session was actually killed.
func KillTmuxSession(projectName, worktreeName string) bool {
	session := SessionName(projectName, worktreeName)
	if exec.Command("tmux", "has-session", "-t", session).Run() != nil {
		return false
	}
	if err := exec.Command("tmux", "kill-session", "-t", session).Run(); err != nil {
		logger.WithComponent("term").Warn("failed to kill tmux session", "session", session, "error", err)
		return false
	}
	return true
}

// Launch opens dir in the given terminal. For tmux use LaunchTmux,
// which needs the session identity.
func Launch(terminal Terminal, dir string) error {
	switch terminal {
	case Tmux:
		return model.NewCLIError(model.ExitGeneralError, "tmux launch requires a session name")
	case AppleTerminal:
		return runOSAScript(fmt.Sprintf(
			"tell application \"Terminal\"\n do script \"cd %s\"\n activate\nend tell", shellQuote(dir)))
	case ITerm2:
		return runOSAScript(fmt.Sprintf(
			"tell application \"iTerm\"\n create window with default profile command \"bash -c 'cd %s; exec $SHELL'\"\nend tell",
			shellQuote(dir)))
	case Ghostty:
		return runDetached("open", "-na", "Ghostty", "--args", "--working-directory="+dir)
	case VSCode:
		return runDetached("code", dir)
	case GnomeTerminal:
		return runDetached("gnome-terminal", "--working-directory="+dir)
	case Konsole:
		return runDetached("konsole", "--workdir", dir)
	case Kitty:
		return runDetached("kitty", "--directory", dir)
	case Alacritty:
		return runDetached("alacritty", "--working-directory", dir)
	}
	return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("unsupported terminal: %s", terminal))
}

// ManualCommand is the hint printed when no terminal could be launched.
func ManualCommand(dir string) string {
	return "cd " + shellQuote(dir)
}

func runOSAScript(script string) error {
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to launch terminal", err)
	}
	return nil
}

func runDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("failed to launch %s", name), err)
	}
	// Detach: the emulator outlives this process.
	go func() { _ = cmd.Wait() }()
	return nil
}

// shellQuote single-quotes s for embedding in a shell command, handling
// embedded single quotes by splicing.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
