package scripts

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mmr-tortoise/coppice/internal/config"
	"github.com/mmr-tortoise/coppice/internal/logger"
	"github.com/mmr-tortoise/coppice/internal/model"
)

// Lifecycle script filenames, looked up under <root>/.worktree/.
const (
	SetupScript = "setup.sh"
	RunScript   = "run.sh"
	StopScript  = "stop.sh"
	CloseScript = "close.sh"
)

// BuildEnv derives the WORKTREE_* environment for lifecycle scripts
// from a worktree's state. WORKTREE_DISPLAY_NAME carries the effective
// name (the custom display name when set, the immutable name otherwise),
// WORKTREE_PARAM is present only when a param was given at creation,
// and each allocated port appears as WORKTREE_PORT_<i> in order.
func BuildEnv(st *model.WorktreeState) []string {
	env := []string{
		"WORKTREE_NAME=" + st.Name,
		"WORKTREE_DISPLAY_NAME=" + st.EffectiveName(),
		"WORKTREE_PROJECT=" + st.ProjectName,
		"WORKTREE_DIR=" + st.WorktreeDir,
		"WORKTREE_ORIGINAL_DIR=" + st.OriginalDir,
		"WORKTREE_ALLOCATION_KEY=" + st.AllocationKey,
	}
	if st.Param != "" {
		env = append(env, "WORKTREE_PARAM="+st.Param)
	}
	for i, port := range st.Ports {
		env = append(env, fmt.Sprintf("WORKTREE_PORT_%d=%d", i, port))
	}
	return env
}

// Path returns the location of a lifecycle script inside root.
func Path(root, name string) string {
	return filepath.Join(root, config.ProjectConfigDirName, name)
}

// Exists reports whether the named script is present in root.
func Exists(root, name string) bool {
	info, err := os.Stat(Path(root, name))
	return err == nil && !info.IsDir()
}

// Run executes the named lifecycle script from root with the state's
// environment appended to the current process environment. The script
// runs via bash with the worktree root as working directory, inheriting
// stdio so its output reaches the user directly.
//
// A missing script or one without the execute bit is an error — Run is
// for scripts the user explicitly asked to execute.
func Run(root, name string, st *model.WorktreeState) error {
	path := Path(root, name)
	info, err := os.Stat(path)
	if err != nil {
		return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("script not found: %s", path))
	}
	if info.Mode().Perm()&0o111 == 0 {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("script is not executable: %s\nrun: chmod +x %s", path, path))
	}

	cmd := exec.Command("bash", path)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), BuildEnv(st)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.WithComponent("scripts").Info("running lifecycle script", "script", name, "worktree", st.Name)
	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("%s failed", name), err)
	}
	return nil
}

// RunIgnoreErrors executes the named script if present, swallowing any
// failure. Used on teardown paths where a broken close.sh must not
// block worktree removal. Returns whether the script ran successfully.
func RunIgnoreErrors(root, name string, st *model.WorktreeState) bool {
	path := Path(root, name)
	if _, err := os.Stat(path); err != nil {
		return false
	}

	cmd := exec.Command("bash", path)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), BuildEnv(st)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		logger.WithComponent("scripts").Warn("lifecycle script failed, continuing",
			"script", name, "worktree", st.Name, "error", err)
		return false
	}
	return true
}
