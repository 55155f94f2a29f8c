package port

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/coppice/internal/model"
)

// newTestStore creates a store backed by files under a temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "port-allocations.json"), filepath.Join(dir, "worktrees"), NewChecker())
	require.NoError(t, err)
	return s
}

// writeStateFile creates the state.json a live worktree would have, so
// that stale cleanup sees the corresponding allocation key as in use.
func writeStateFile(t *testing.T, worktreesDir, project, name string) {
	t.Helper()
	dir := filepath.Join(worktreesDir, project, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, model.StateFileName), []byte("{}"), 0o644))
}

// TestOpen_MissingFile verifies that a nonexistent allocation file yields
// an empty store rather than an error — first run has no file.
func TestOpen_MissingFile(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.AllAllocatedPorts())
	assert.Nil(t, s.Ports("proj/wt"))
}

// TestOpen_MalformedFile verifies that corrupt JSON is surfaced as a
// parse error naming the file, not silently discarded.
func TestOpen_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "port-allocations.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path, filepath.Join(dir, "worktrees"), NewChecker())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port-allocations.json")
}

// TestAllocate_FreshKey verifies the basic allocation path: a new key in
// an empty store gets the first run at the bottom of the range.
func TestAllocate_FreshKey(t *testing.T) {
	requireRangeFree(t, 50000, 10)
	s := newTestStore(t)
	writeStateFile(t, s.worktreesDir, "proj", "alpha")

	result, err := s.Allocate(5, "proj/alpha", 50000, 50010)
	require.NoError(t, err)
	assert.False(t, result.Existing)
	assert.Equal(t, []uint16{50000, 50001, 50002, 50003, 50004}, result.Ports)
}

// TestAllocate_Idempotent verifies that re-allocating an existing key
// returns the original ports unchanged with Existing=true, instead of
// burning a second run. Retrying a failed create must not leak ports.
func TestAllocate_Idempotent(t *testing.T) {
	requireRangeFree(t, 50000, 10)
	s := newTestStore(t)
	writeStateFile(t, s.worktreesDir, "proj", "alpha")

	first, err := s.Allocate(5, "proj/alpha", 50000, 50010)
	require.NoError(t, err)
	require.False(t, first.Existing)

	second, err := s.Allocate(5, "proj/alpha", 50000, 50010)
	require.NoError(t, err)
	assert.True(t, second.Existing)
	assert.Equal(t, first.Ports, second.Ports)
}

// TestAllocate_ZeroCount verifies that a zero-count request records an
// empty allocation instead of failing: the run is empty, the record is
// persisted, and re-allocating returns it as existing. Reachable through
// a settings file with portCount 0.
func TestAllocate_ZeroCount(t *testing.T) {
	s := newTestStore(t)
	writeStateFile(t, s.worktreesDir, "proj", "empty")

	result, err := s.Allocate(0, "proj/empty", 50000, 50010)
	require.NoError(t, err)
	assert.False(t, result.Existing)
	assert.Empty(t, result.Ports)

	again, err := s.Allocate(0, "proj/empty", 50000, 50010)
	require.NoError(t, err)
	assert.True(t, again.Existing)
	assert.Empty(t, again.Ports)
}

// TestAllocate_ExcludesOtherKeys verifies global exclusivity: a second
// key's run starts after the first key's ports even though nothing is
// listening on them.
func TestAllocate_ExcludesOtherKeys(t *testing.T) {
	requireRangeFree(t, 50000, 10)
	s := newTestStore(t)
	writeStateFile(t, s.worktreesDir, "proj", "alpha")
	writeStateFile(t, s.worktreesDir, "proj", "beta")

	first, err := s.Allocate(3, "proj/alpha", 50000, 50010)
	require.NoError(t, err)
	require.Equal(t, []uint16{50000, 50001, 50002}, first.Ports)

	second, err := s.Allocate(3, "proj/beta", 50000, 50010)
	require.NoError(t, err)
	assert.Equal(t, []uint16{50003, 50004, 50005}, second.Ports)
}

// TestAllocate_Exhausted verifies that an unsatisfiable request reports
// the count and range it could not serve.
func TestAllocate_Exhausted(t *testing.T) {
	requireRangeFree(t, 50000, 10)
	s := newTestStore(t)
	writeStateFile(t, s.worktreesDir, "proj", "alpha")
	writeStateFile(t, s.worktreesDir, "proj", "beta")

	_, err := s.Allocate(8, "proj/alpha", 50000, 50010)
	require.NoError(t, err)

	_, err = s.Allocate(8, "proj/beta", 50000, 50010)
	require.Error(t, err)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 8, exhausted.Count)
	assert.Equal(t, uint16(50000), exhausted.RangeStart)
	assert.Equal(t, uint16(50010), exhausted.RangeEnd)
}

// TestAllocate_Persisted verifies round-tripping through the file: a
// fresh store opened on the same path sees the earlier allocation.
func TestAllocate_Persisted(t *testing.T) {
	requireRangeFree(t, 50000, 10)
	s := newTestStore(t)
	writeStateFile(t, s.worktreesDir, "proj", "alpha")

	_, err := s.Allocate(3, "proj/alpha", 50000, 50010)
	require.NoError(t, err)

	reopened, err := Open(s.path, s.worktreesDir, NewChecker())
	require.NoError(t, err)
	assert.Equal(t, []uint16{50000, 50001, 50002}, reopened.Ports("proj/alpha"))
}

// TestCleanupStale verifies that records without a backing worktree
// state file are dropped while records with one survive.
func TestCleanupStale(t *testing.T) {
	s := newTestStore(t)
	writeStateFile(t, s.worktreesDir, "proj", "alive")
	s.allocations["proj/alive"] = []uint16{50000, 50001}
	s.allocations["proj/deleted"] = []uint16{50002, 50003}

	removed := s.CleanupStale()
	assert.Equal(t, []string{"proj/deleted"}, removed)
	assert.Contains(t, s.allocations, "proj/alive")
	assert.NotContains(t, s.allocations, "proj/deleted")
}

// TestCleanupStale_LegacyBareKey verifies that a key without a project
// segment is probed directly under the worktrees dir.
func TestCleanupStale_LegacyBareKey(t *testing.T) {
	s := newTestStore(t)
	dir := filepath.Join(s.worktreesDir, "bare")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, model.StateFileName), []byte("{}"), 0o644))
	s.allocations["bare"] = []uint16{50000}
	s.allocations["gone"] = []uint16{50001}

	removed := s.CleanupStale()
	assert.Equal(t, []string{"gone"}, removed)
	assert.Contains(t, s.allocations, "bare")
}

// TestAllocate_ReclaimsStalePorts verifies that Allocate's cleanup pass
// frees ports held by a deleted worktree, letting a new key reuse them.
func TestAllocate_ReclaimsStalePorts(t *testing.T) {
	requireRangeFree(t, 50000, 10)
	s := newTestStore(t)
	writeStateFile(t, s.worktreesDir, "proj", "alpha")

	// Fill most of the range under a key with no backing worktree.
	s.allocations["proj/deleted"] = []uint16{50000, 50001, 50002, 50003, 50004, 50005, 50006}
	require.NoError(t, s.Save())

	result, err := s.Allocate(5, "proj/alpha", 50000, 50010)
	require.NoError(t, err)
	assert.Equal(t, []uint16{50000, 50001, 50002, 50003, 50004}, result.Ports)
}

// TestDeallocate verifies removal returns the freed ports and persists.
func TestDeallocate(t *testing.T) {
	requireRangeFree(t, 50000, 10)
	s := newTestStore(t)
	writeStateFile(t, s.worktreesDir, "proj", "alpha")

	_, err := s.Allocate(3, "proj/alpha", 50000, 50010)
	require.NoError(t, err)

	ports, err := s.Deallocate("proj/alpha")
	require.NoError(t, err)
	assert.Equal(t, []uint16{50000, 50001, 50002}, ports)

	reopened, err := Open(s.path, s.worktreesDir, NewChecker())
	require.NoError(t, err)
	assert.Nil(t, reopened.Ports("proj/alpha"))
}

// TestDeallocate_UnknownKey verifies that deallocating a key that was
// never allocated is a no-op, not an error.
func TestDeallocate_UnknownKey(t *testing.T) {
	s := newTestStore(t)

	ports, err := s.Deallocate("proj/never")
	require.NoError(t, err)
	assert.Nil(t, ports)
}
