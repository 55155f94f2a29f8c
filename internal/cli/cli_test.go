package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/coppice/internal/model"
	"github.com/mmr-tortoise/coppice/internal/state"
)

// TestNewRootCommand verifies the command tree and global flags are
// wired up.
func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	assert.Equal(t, "coppice", root.Use)
	assert.NotNil(t, root.PersistentFlags().Lookup("json"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))

	want := []string{"init", "new", "list", "status", "path", "run", "stop", "close", "cleanup", "rename"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

// TestResolveWorktree_NotFound verifies the worktree-not-found exit code
// for an unknown identifier.
func TestResolveWorktree_NotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := resolveWorktree("no-such-worktree")
	require.Error(t, err)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitWorktreeNotFound, cliErr.Code)
}

// TestResolveWorktree_ByDisplayName verifies resolution through the
// display-name overlay.
func TestResolveWorktree_ByDisplayName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".worktree", "worktrees", "demo", "swift-falcon")
	st := model.NewWorktreeState("swift-falcon", "demo", dir)
	st.DisplayName = "login-fix"
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, state.Save(st))

	found, err := resolveWorktree("login-fix")
	require.NoError(t, err)
	assert.Equal(t, "swift-falcon", found.Name)
}

// TestRunRename_EmptyNameClears verifies that an explicit empty name
// removes the display name, matching --clear.
func TestRunRename_EmptyNameClears(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".worktree", "worktrees", "demo", "swift-falcon")
	st := model.NewWorktreeState("swift-falcon", "demo", dir)
	st.DisplayName = "login-fix"
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, state.Save(st))

	cmd := NewRenameCommand()
	cmd.SetArgs([]string{"swift-falcon", ""})
	require.NoError(t, cmd.Execute())

	found, err := resolveWorktree("swift-falcon")
	require.NoError(t, err)
	assert.False(t, found.HasCustomName())
	assert.Equal(t, "swift-falcon", found.EffectiveName())
}

func TestFormatAge(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", formatAge(now.Add(-30*time.Second)))
	assert.Equal(t, "5m ago", formatAge(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", formatAge(now.Add(-3*time.Hour)))
	assert.Equal(t, "2d ago", formatAge(now.Add(-49*time.Hour)))
}

func TestFormatInactiveDays(t *testing.T) {
	assert.Equal(t, "today", formatInactiveDays(0))
	assert.Equal(t, "1 day", formatInactiveDays(1))
	assert.Equal(t, "5 days", formatInactiveDays(5))
	assert.Equal(t, "2 weeks", formatInactiveDays(15))
	assert.Equal(t, "3 months", formatInactiveDays(95))
}
