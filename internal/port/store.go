package port

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/coppice/internal/config"
	"github.com/mmr-tortoise/coppice/internal/logger"
	"github.com/mmr-tortoise/coppice/internal/model"
)

// ExhaustedError indicates that no run of free ports of the requested
// size exists in the configured range. It is fatal to the calling
// operation and is never retried.
type ExhaustedError struct {
	Count      int
	RangeStart uint16
	RangeEnd   uint16
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("could not find %d consecutive free ports in range %d-%d",
		e.Count, e.RangeStart, e.RangeEnd)
}

// AllocationResult is what Allocate returns: the reserved ports and
// whether they came from a pre-existing record.
type AllocationResult struct {
	// Ports is the contiguous run reserved for the key.
	Ports []uint16

	// Existing is true when the key already had a record and Allocate
	// returned it unchanged (idempotent re-entry, e.g. re-running create
	// after a partial failure).
	Existing bool
}

// Store is the persistent mapping from allocation key to port list,
// backed by a single JSON file — a flat object of key to port array, no
// envelope or version field.
//
// Keys have the form "<project>/<worktree-name>" (a bare name is accepted
// for legacy records). The store is loaded fresh for each mutating
// operation; there is no cross-process locking, so concurrent allocations
// from separate invocations can race (see the package comment).
type Store struct {
	// path is the allocation file location.
	path string

	// worktreesDir is the root under which worktree state files are
	// probed during stale cleanup (<worktreesDir>/<project>/<name>/state.json).
	worktreesDir string

	// checker probes OS-level port availability.
	checker *Checker

	// allocations is the in-memory snapshot of the allocation file.
	allocations map[string][]uint16
}

// Open loads the allocation store from path. A missing file is an empty
// store, not an error. worktreesDir is the base directory used to probe
// for worktree state files during stale cleanup.
func Open(path, worktreesDir string, checker *Checker) (*Store, error) {
	s := &Store{
		path:         path,
		worktreesDir: worktreesDir,
		checker:      checker,
		allocations:  make(map[string][]uint16),
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenDefault opens the store at its conventional global locations
// (~/.worktree/port-allocations.json, probing ~/.worktree/worktrees/).
func OpenDefault() (*Store, error) {
	path, err := config.AllocationsFile()
	if err != nil {
		return nil, err
	}
	worktreesDir, err := config.GlobalWorktreesDir()
	if err != nil {
		return nil, err
	}
	return Open(path, worktreesDir, NewChecker())
}

// reload replaces the in-memory snapshot with the file's current content.
func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.allocations = make(map[string][]uint16)
		return nil
	}
	if err != nil {
		return model.IOError("read", s.path, err)
	}

	allocations := make(map[string][]uint16)
	if err := json.Unmarshal(data, &allocations); err != nil {
		return model.ParseError(s.path, err)
	}
	s.allocations = allocations
	return nil
}

// Save serializes the full map and overwrites the allocation file,
// creating parent directories as needed. A failed write is reported to
// the caller — persistence is all-or-nothing from its viewpoint.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return model.IOError("create", filepath.Dir(s.path), err)
	}
	data, err := json.MarshalIndent(s.allocations, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return model.IOError("write", s.path, err)
	}
	return nil
}

// Ports returns the record for a key, or nil when the key has no record.
func (s *Store) Ports(key string) []uint16 {
	return s.allocations[key]
}

// AllAllocatedPorts returns the union of all ports across all records.
// This is the exclusion set for new allocations — the mechanism behind
// the global-exclusivity invariant.
func (s *Store) AllAllocatedPorts() map[uint16]bool {
	all := make(map[uint16]bool)
	for _, ports := range s.allocations {
		for _, p := range ports {
			all[p] = true
		}
	}
	return all
}

// CleanupStale removes records whose owning worktree no longer exists on
// disk and returns the removed keys. The in-memory snapshot is modified;
// callers decide whether to persist the result with Save.
//
// Staleness is a heuristic reconciliation against the worktree state
// store, not a transactional join: the key is split on "/" into
// (project, name) and the conventional global path
// <worktreesDir>/<project>/<name>/state.json is probed. Worktrees placed
// in a custom directory are probed at a best-effort fallback path and can
// be misclassified as stale — a known limitation. When the probe itself
// fails (rather than cleanly reporting absence), the record is kept:
// better an orphaned reservation than a double-allocated port.
func (s *Store) CleanupStale() []string {
	var stale []string
	for key := range s.allocations {
		if !s.worktreeExists(key) {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		delete(s.allocations, key)
	}
	if len(stale) > 0 {
		logger.WithComponent("port").Info("removed stale allocations", "keys", strings.Join(stale, ","))
	}
	return stale
}

// worktreeExists probes for the state file that would belong to an
// allocation key.
func (s *Store) worktreeExists(key string) bool {
	var dir string
	if project, name, ok := strings.Cut(key, "/"); ok {
		dir = filepath.Join(s.worktreesDir, project, name)
	} else {
		// Legacy bare-name key: probe directly under the global dir.
		dir = filepath.Join(s.worktreesDir, key)
	}

	_, err := os.Stat(filepath.Join(dir, model.StateFileName))
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	// Probe failed for some other reason (permissions, transient I/O).
	// Treat as live rather than discarding a possibly valid reservation.
	return true
}

// Allocate reserves count consecutive free ports for key within
// [rangeStart, rangeEnd).
//
// Each call reloads the file and runs a stale-cleanup pass first, so the
// exclusion set reflects the latest on-disk picture. If the key already
// has a record it is returned unchanged with Existing=true; ports are
// assigned once and never change for the lifetime of a key. Otherwise the
// run is found, inserted, and persisted in one save.
//
// Note the read-modify-write here has no lock around it: two simultaneous
// invocations can both load before either saves, and the loser's record
// can be clobbered. Accepted for single-machine interactive use.
func (s *Store) Allocate(count int, key string, rangeStart, rangeEnd uint16) (*AllocationResult, error) {
	if err := s.reload(); err != nil {
		return nil, err
	}
	s.CleanupStale()

	if ports, ok := s.allocations[key]; ok {
		return &AllocationResult{Ports: ports, Existing: true}, nil
	}

	excluded := s.AllAllocatedPorts()
	ports, ok := s.checker.FindConsecutiveFree(count, rangeStart, rangeEnd, excluded)
	if !ok {
		return nil, &ExhaustedError{Count: count, RangeStart: rangeStart, RangeEnd: rangeEnd}
	}

	s.allocations[key] = ports
	if err := s.Save(); err != nil {
		return nil, err
	}

	// A zero-count request yields an empty run; there is no first port
	// to report then.
	log := logger.WithComponent("port")
	if len(ports) > 0 {
		log.Info("allocated ports", "key", key, "count", count, "first", ports[0])
	} else {
		log.Info("allocated ports", "key", key, "count", count)
	}
	return &AllocationResult{Ports: ports, Existing: false}, nil
}

// Deallocate removes the record for key and persists the change. A key
// that was never allocated returns nil without error — absence is a valid
// outcome, not a failure.
func (s *Store) Deallocate(key string) ([]uint16, error) {
	if err := s.reload(); err != nil {
		return nil, err
	}

	ports, ok := s.allocations[key]
	if !ok {
		return nil, nil
	}
	delete(s.allocations, key)
	if err := s.Save(); err != nil {
		return nil, err
	}

	logger.WithComponent("port").Info("deallocated ports", "key", key)
	return ports, nil
}
