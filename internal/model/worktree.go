package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// StateFileName is the conventional name of the per-worktree state document.
// It lives directly inside the worktree root directory, so the worktree's
// own filesystem location exclusively owns its record.
const StateFileName = "state.json"

// MaxDisplayNameLength bounds user-assigned display names.
const MaxDisplayNameLength = 64

// WorktreeState is the persisted record for a single worktree environment.
//
// One JSON document per worktree, stored at <WorktreeDir>/state.json with
// camelCase field names on the wire. All fields except DisplayName are set
// once at creation and never mutated; DisplayName is the only field the
// rename operation may change afterwards.
type WorktreeState struct {
	// Name is the directory-derived identifier (e.g., "swift-falcon").
	// Immutable after creation and unique within its project.
	Name string `json:"name" yaml:"name"`

	// ProjectName is the name of the source repository, derived from the
	// main working tree's directory name.
	ProjectName string `json:"projectName" yaml:"projectName"`

	// OriginalDir is the absolute path to the source working copy.
	OriginalDir string `json:"originalDir" yaml:"originalDir"`

	// WorktreeDir is the absolute path to this isolated copy.
	WorktreeDir string `json:"worktreeDir" yaml:"worktreeDir"`

	// Branch is the git branch checked out in this worktree.
	Branch string `json:"branch" yaml:"branch"`

	// Ports is the ordered, contiguous run of TCP ports reserved for this
	// worktree. It matches the AllocationStore record for AllocationKey.
	Ports []uint16 `json:"ports" yaml:"ports"`

	// AllocationKey is "<projectName>/<name>", linking this record to its
	// port reservation.
	AllocationKey string `json:"allocationKey" yaml:"allocationKey"`

	// CreatedAt is the creation timestamp in UTC, RFC 3339 on the wire.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`

	// Param is an optional free-form string captured at creation
	// (e.g., an issue ID). Immutable.
	Param string `json:"param,omitempty" yaml:"param,omitempty"`

	// DisplayName is an optional user-assigned alias. When set it takes
	// precedence over Name for display and identifier matching. Cleared
	// by setting it back to empty.
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
}

// NewWorktreeState constructs a WorktreeState with its derived fields
// populated: AllocationKey is "<projectName>/<name>" and CreatedAt is the
// current UTC time truncated to whole seconds for a clean RFC 3339 wire
// representation.
func NewWorktreeState(name, projectName, worktreeDir string) *WorktreeState {
	return &WorktreeState{
		Name:          name,
		ProjectName:   projectName,
		WorktreeDir:   worktreeDir,
		AllocationKey: projectName + "/" + name,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

// EffectiveName returns the display name if set, otherwise the
// directory-derived name.
func (s *WorktreeState) EffectiveName() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

// HasCustomName reports whether a user-assigned display name is set.
func (s *WorktreeState) HasCustomName() bool {
	return s.DisplayName != ""
}

// MatchesIdentifier reports whether a user-supplied identifier refers to
// this worktree. It matches the immutable directory name, the optional
// display name, and the allocation-key suffix after its last "/".
func (s *WorktreeState) MatchesIdentifier(identifier string) bool {
	if identifier == "" {
		return false
	}
	if s.Name == identifier {
		return true
	}
	if s.DisplayName != "" && s.DisplayName == identifier {
		return true
	}
	return strings.HasSuffix(s.AllocationKey, "/"+identifier)
}

// ValidateDisplayName checks the constraints on user-assigned display
// names: no path separators and at most MaxDisplayNameLength characters.
// The empty string is valid — it represents "no custom name".
func ValidateDisplayName(name string) error {
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name cannot contain path separators (/ or \\)")
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return fmt.Errorf("name is too long (max %d characters)", MaxDisplayNameLength)
	}
	return nil
}
