package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewWorktreeState verifies that the constructor derives the allocation
// key from project and name, and stamps the creation time in UTC.
func TestNewWorktreeState(t *testing.T) {
	st := NewWorktreeState("swift-falcon", "demo", "/tmp/demo/swift-falcon")

	assert.Equal(t, "swift-falcon", st.Name)
	assert.Equal(t, "demo", st.ProjectName)
	assert.Equal(t, "demo/swift-falcon", st.AllocationKey)
	assert.Equal(t, time.UTC, st.CreatedAt.Location(), "createdAt should be UTC")
	assert.WithinDuration(t, time.Now().UTC(), st.CreatedAt, 5*time.Second)
}

// TestEffectiveName verifies the display-name overlay: the custom name wins
// when set, and the directory name is the fallback.
func TestEffectiveName(t *testing.T) {
	st := NewWorktreeState("swift-falcon", "demo", "/tmp/wt")
	assert.Equal(t, "swift-falcon", st.EffectiveName())
	assert.False(t, st.HasCustomName())

	st.DisplayName = "auth-work"
	assert.Equal(t, "auth-work", st.EffectiveName())
	assert.True(t, st.HasCustomName())

	// Clearing reverts to the directory name.
	st.DisplayName = ""
	assert.Equal(t, "swift-falcon", st.EffectiveName())
	assert.False(t, st.HasCustomName())
}

// TestMatchesIdentifier covers the three accepted identifier forms:
// directory name, display name, and allocation-key suffix.
func TestMatchesIdentifier(t *testing.T) {
	st := NewWorktreeState("swift-falcon", "demo", "/tmp/wt")
	st.DisplayName = "auth-work"

	assert.True(t, st.MatchesIdentifier("swift-falcon"), "should match directory name")
	assert.True(t, st.MatchesIdentifier("auth-work"), "should match display name")
	assert.True(t, st.MatchesIdentifier("swift-falcon"), "allocation-key suffix equals name here")
	assert.False(t, st.MatchesIdentifier("other-thing"), "unrelated string should not match")
	assert.False(t, st.MatchesIdentifier("demo"), "project prefix alone should not match")
	assert.False(t, st.MatchesIdentifier(""), "empty identifier should never match")
}

// TestMatchesIdentifier_NoDisplayName verifies that an unset display name
// does not accidentally match the empty string or stale aliases.
func TestMatchesIdentifier_NoDisplayName(t *testing.T) {
	st := NewWorktreeState("brave-otter", "api", "/tmp/wt")

	assert.True(t, st.MatchesIdentifier("brave-otter"))
	assert.False(t, st.MatchesIdentifier("auth-work"))
}

// TestValidateDisplayName checks the rename constraints: path separators
// are rejected, long names are rejected, and empty (a clear) is allowed.
func TestValidateDisplayName(t *testing.T) {
	assert.NoError(t, ValidateDisplayName(""), "empty means clear and is valid")
	assert.NoError(t, ValidateDisplayName("auth-work"))

	err := ValidateDisplayName("feature/auth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path separators")

	err = ValidateDisplayName(`feature\auth`)
	require.Error(t, err)

	err = ValidateDisplayName(strings.Repeat("x", MaxDisplayNameLength+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")

	assert.NoError(t, ValidateDisplayName(strings.Repeat("x", MaxDisplayNameLength)))
}

// TestValidateDisplayName_MultibyteLength verifies the length limit
// counts characters, not bytes: 64 two-byte runes are within the limit
// even though they take 128 bytes.
func TestValidateDisplayName_MultibyteLength(t *testing.T) {
	assert.NoError(t, ValidateDisplayName(strings.Repeat("ü", MaxDisplayNameLength)))

	err := ValidateDisplayName(strings.Repeat("ü", MaxDisplayNameLength+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

// TestCLIError verifies message formatting and error unwrapping.
func TestCLIError(t *testing.T) {
	base := NewCLIError(ExitGitError, "git worktree add failed")
	assert.Equal(t, "git worktree add failed", base.Error())
	assert.Nil(t, base.Unwrap())

	wrapped := WrapCLIError(ExitPortAllocationFailed, "port allocation failed", assert.AnError)
	assert.Contains(t, wrapped.Error(), "port allocation failed")
	assert.ErrorIs(t, wrapped, assert.AnError)
}
